package qmsg

import (
	"fmt"

	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// TempEntityType is the one-byte sub-tag of a TempEntity message (muzzle
// flashes, impacts, lightning bolts, teleport fog...). Adapted from the
// enum-table idiom used for protocol versions (protocol.Version).
type TempEntityType struct {
	protocol.Enum
	ID uint8
}

var (
	types []*TempEntityType

	TETSpike        = newTEType("Spike", 0)
	TETSuperSpike   = newTEType("SuperSpike", 1)
	TETGunshot      = newTEType("Gunshot", 2)
	TETExplosion    = newTEType("Explosion", 3)
	TETTarExplosion = newTEType("TarExplosion", 4)
	TETLightning1   = newTEType("Lightning1", 5)
	TETColorMap     = newTEType("ColorMap", 6)
	TETLightning2   = newTEType("Lightning2", 7)
	TETWizSpike     = newTEType("WizSpike", 8)
	TETKnightSpike  = newTEType("KnightSpike", 9)
	TETLightning3   = newTEType("Lightning3", 10)
	TETLavaSplash   = newTEType("LavaSplash", 11)
	TETTeleport     = newTEType("Teleport", 12)
	TETExplosion2   = newTEType("Explosion2", 13)
	TETBeam         = newTEType("Beam", 14)
)

func newTEType(name string, id uint8) *TempEntityType {
	t := &TempEntityType{Enum: protocol.Enum{Name: name}, ID: id}
	types = append(types, t)
	return t
}

func tempEntityTypeByID(id uint8) *TempEntityType {
	for _, t := range types {
		if t.ID == id {
			return t
		}
	}
	return &TempEntityType{Enum: protocol.UnknownEnum(id), ID: id}
}

// tePayloadKind classifies a TempEntityType into one of five wire shapes.
type tePayloadKind int

const (
	tePosition tePayloadKind = iota
	tePositionColormap
	tePositionColor
	teBeam
	teBeamNamed
)

func (t *TempEntityType) payloadKind() tePayloadKind {
	switch t {
	case TETSpike, TETSuperSpike, TETGunshot, TETExplosion, TETTarExplosion,
		TETWizSpike, TETKnightSpike, TETLavaSplash, TETTeleport:
		return tePosition
	case TETColorMap:
		return tePositionColormap
	case TETExplosion2:
		return tePositionColor
	case TETLightning1, TETLightning2, TETLightning3:
		return teBeam
	case TETBeam:
		return teBeamNamed
	default:
		return tePosition
	}
}

// TempEntityMessage is a one-shot world effect. Exactly one of the Position*/
// Beam* fields is populated, selected by Type's payload kind.
type TempEntityMessage struct {
	Type *TempEntityType

	Position TempEntityPosition

	PositionColormap TempEntityPositionColormap
	PositionColor    TempEntityPositionColor
	Beam             TempEntityBeam
	BeamNamed        TempEntityBeamNamed
}

// TempEntityPosition covers impacts and explosions carrying only a point.
type TempEntityPosition struct {
	Origin [3]float32
}

// TempEntityPositionColormap covers the colored-light variant.
type TempEntityPositionColormap struct {
	Origin   [3]float32
	Colormap uint8
}

// TempEntityPositionColor covers TE_EXPLOSION2's particle-color range.
type TempEntityPositionColor struct {
	Origin     [3]float32
	StartColor uint8
	ColorCount uint8
}

// TempEntityBeam covers the fixed-model lightning bolts.
type TempEntityBeam struct {
	Entity     int32
	Start, End [3]float32
}

// TempEntityBeamNamed covers TE_BEAM, whose model is an explicit precache
// index rather than one of the three built-in lightning models.
type TempEntityBeamNamed struct {
	Entity     int32
	ModelIndex uint16
	Start, End [3]float32
}

func (*TempEntityMessage) MessageID() ID { return IDTempEntity }

func parseTempEntity(r *bindata.Reader, state *protocol.State) (*TempEntityMessage, error) {
	typeByte, err := r.U8()
	if err != nil {
		return nil, err
	}
	teType := tempEntityTypeByID(typeByte)
	m := &TempEntityMessage{Type: teType}

	readOrigin := func() ([3]float32, error) {
		var o [3]float32
		for i := range o {
			v, err := protocol.ReadCoord(r, state.Flags)
			if err != nil {
				return o, err
			}
			o[i] = v
		}
		return o, nil
	}

	switch teType.payloadKind() {
	case tePosition:
		o, err := readOrigin()
		if err != nil {
			return nil, err
		}
		m.Position = TempEntityPosition{Origin: o}

	case tePositionColormap:
		o, err := readOrigin()
		if err != nil {
			return nil, err
		}
		cm, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.PositionColormap = TempEntityPositionColormap{Origin: o, Colormap: cm}

	case tePositionColor:
		o, err := readOrigin()
		if err != nil {
			return nil, err
		}
		start, err := r.U8()
		if err != nil {
			return nil, err
		}
		count, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.PositionColor = TempEntityPositionColor{Origin: o, StartColor: start, ColorCount: count}

	case teBeam:
		ent, err := r.U16()
		if err != nil {
			return nil, err
		}
		start, err := readOrigin()
		if err != nil {
			return nil, err
		}
		end, err := readOrigin()
		if err != nil {
			return nil, err
		}
		m.Beam = TempEntityBeam{Entity: int32(ent), Start: start, End: end}

	case teBeamNamed:
		ent, err := r.U16()
		if err != nil {
			return nil, err
		}
		model, err := r.U16()
		if err != nil {
			return nil, err
		}
		start, err := readOrigin()
		if err != nil {
			return nil, err
		}
		end, err := readOrigin()
		if err != nil {
			return nil, err
		}
		m.BeamNamed = TempEntityBeamNamed{Entity: int32(ent), ModelIndex: model, Start: start, End: end}

	default:
		return nil, fmt.Errorf("qmsg: unhandled temp entity payload kind for type %d", typeByte)
	}

	return m, nil
}

func writeTempEntity(w *bindata.Writer, m *TempEntityMessage, state *protocol.State) {
	w.U8(m.Type.ID)

	writeOrigin := func(o [3]float32) {
		for _, v := range o {
			protocol.WriteCoord(w, state.Flags, v)
		}
	}

	switch m.Type.payloadKind() {
	case tePosition:
		writeOrigin(m.Position.Origin)
	case tePositionColormap:
		writeOrigin(m.PositionColormap.Origin)
		w.U8(m.PositionColormap.Colormap)
	case tePositionColor:
		writeOrigin(m.PositionColor.Origin)
		w.U8(m.PositionColor.StartColor)
		w.U8(m.PositionColor.ColorCount)
	case teBeam:
		w.U16(uint16(m.Beam.Entity))
		writeOrigin(m.Beam.Start)
		writeOrigin(m.Beam.End)
	case teBeamNamed:
		w.U16(uint16(m.BeamNamed.Entity))
		w.U16(m.BeamNamed.ModelIndex)
		writeOrigin(m.BeamNamed.Start)
		writeOrigin(m.BeamNamed.End)
	}
}
