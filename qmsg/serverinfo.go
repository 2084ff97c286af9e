package qmsg

import (
	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// ServerInfoMessage replaces the ambient protocol.State for the rest of the
// stream (§4.3). Its two precache lists are NUL-terminated C-string runs
// terminated by an empty string; the 1-based indexing convention used
// throughout the rest of the system is preserved here by prepending an
// empty sentinel at index 0.
type ServerInfoMessage struct {
	Version        uint32
	ProtocolFlags  protocol.Flags // only present on the wire if Version == RMQ
	MaxClients     uint8
	GameType       uint8
	LevelName      []byte
	ModelPrecache  [][]byte // index 0 is the empty sentinel
	SoundPrecache  [][]byte // index 0 is the empty sentinel
}

func (*ServerInfoMessage) MessageID() ID { return IDServerInfo }

func parseServerInfo(r *bindata.Reader, state *protocol.State) (*ServerInfoMessage, error) {
	version, err := r.U32()
	if err != nil {
		return nil, err
	}

	m := &ServerInfoMessage{Version: version}

	ver := protocol.VersionByID(version)
	if ver == protocol.VersionRMQ {
		flags, err := r.U32()
		if err != nil {
			return nil, err
		}
		m.ProtocolFlags = protocol.Flags(flags)
	}

	if m.MaxClients, err = r.U8(); err != nil {
		return nil, err
	}
	if m.GameType, err = r.U8(); err != nil {
		return nil, err
	}
	if m.LevelName, err = readCStringCopy(r); err != nil {
		return nil, err
	}

	if m.ModelPrecache, err = readPrecacheList(r); err != nil {
		return nil, err
	}
	if m.SoundPrecache, err = readPrecacheList(r); err != nil {
		return nil, err
	}

	// Replace the ambient protocol state for everything that follows.
	*state = protocol.State{Version: ver, Flags: m.ProtocolFlags}

	return m, nil
}

func readCStringCopy(r *bindata.Reader) ([]byte, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), s...), nil
}

// readPrecacheList reads a run of NUL-terminated strings up to (and
// consuming) the terminating empty string, prepending the index-0 sentinel.
func readPrecacheList(r *bindata.Reader) ([][]byte, error) {
	list := [][]byte{{}}
	for {
		s, err := readCStringCopy(r)
		if err != nil {
			return nil, err
		}
		if len(s) == 0 {
			return list, nil
		}
		list = append(list, s)
	}
}

func writeServerInfo(w *bindata.Writer, m *ServerInfoMessage, state *protocol.State) {
	w.U32(m.Version)

	ver := protocol.VersionByID(m.Version)
	if ver == protocol.VersionRMQ {
		w.U32(uint32(m.ProtocolFlags))
	}

	w.U8(m.MaxClients)
	w.U8(m.GameType)
	w.CString(m.LevelName)

	writePrecacheList(w, m.ModelPrecache)
	writePrecacheList(w, m.SoundPrecache)

	*state = protocol.State{Version: ver, Flags: m.ProtocolFlags}
}

// writePrecacheList strips the index-0 sentinel this system prepends on
// parse, then emits the trailing empty-string terminator.
func writePrecacheList(w *bindata.Writer, list [][]byte) {
	if len(list) > 0 {
		list = list[1:]
	}
	for _, s := range list {
		w.CString(s)
	}
	w.CString(nil)
}
