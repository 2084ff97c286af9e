package protocol

// Version identifies the wire protocol variant a demo (or a stretch of one,
// starting from the ServerInfo message that declared it) was recorded with.
type Version struct {
	Enum

	// ID is the numeric value as it appears on the wire.
	ID uint32
}

// Versions is an enumeration of the versions this system understands.
var Versions = []*Version{
	{Enum{"NetQuake"}, 15},
	{Enum{"FitzQuake"}, 666},
	{Enum{"RMQ"}, 999},
}

// Named versions.
var (
	VersionNetQuake  = Versions[0]
	VersionFitzQuake = Versions[1]
	VersionRMQ       = Versions[2]
)

var versionByID = map[uint32]*Version{}

func init() {
	for _, v := range Versions {
		versionByID[v.ID] = v
	}
}

// VersionByID returns the Version for a given wire ID, or a new Version
// carrying an "Unknown" name if id isn't one of the recognized ones (the ID
// itself is preserved so writers can still round-trip an unrecognized
// protocol).
func VersionByID(id uint32) *Version {
	if v, ok := versionByID[id]; ok {
		return v
	}
	return &Version{UnknownEnum(id), id}
}

// Flags is the protocol-flags bitset, only meaningful (and only present on
// the wire) when Version is RMQ.
type Flags uint32

// Flag bits, in the fixed test order used by the coord/angle codec.
const (
	FlagShortAngle  Flags = 1 << 1
	FlagFloatAngle  Flags = 1 << 2
	Flag24BitCoord  Flags = 1 << 3
	FlagFloatCoord  Flags = 1 << 4
	FlagEdictScale  Flags = 1 << 5
	FlagAlphaSanity Flags = 1 << 6
	FlagInt32Coord  Flags = 1 << 7
)

// Has reports whether all bits of mask are set in f.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// State is the ambient protocol state threaded explicitly through block and
// message (de)serialization. It starts at {NetQuake, 0} and is replaced
// wholesale whenever a ServerInfo message is parsed or written. This is
// deliberately a plain value passed by the caller, never a package-level
// variable: see SPEC_FULL.md's AMBIENT STACK / Design Notes for why.
type State struct {
	Version *Version
	Flags   Flags
}

// Default is the state a demo starts in before any ServerInfo message is
// seen.
func Default() State {
	return State{Version: VersionNetQuake, Flags: 0}
}

// Override wraps a State. No function in this module accepts one: demo.Write
// always switches to the state of each ServerInfo message it writes.
type Override struct {
	State State
}
