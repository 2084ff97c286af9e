package qmsg

import (
	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// EntityState is the resolved, always-fully-populated view of one entity's
// renderable state: what SpawnStatic/SpawnBaseline establish and EntityUpdate
// partially overrides. Baselines stores one of these per entity number.
type EntityState struct {
	ModelIndex int32
	Frame      int32
	ColorMap   uint8
	Skin       uint8
	Effects    uint32
	Origin     [3]float32
	Angles     [3]float32
}

// EntityUpdateMessage is the per-entity delta sent every frame an entity
// changes. It is the hardest single message in the protocol (§4.3): its
// flags word is assembled byte-by-byte and gates which of {modelindex,
// frame, colormap, skinnum, effects, origin[i], angles[i]} are on the wire;
// everything else inherits from the entity's spawn baseline.
//
// Present records the exact wire flag bits so an unmodified message
// round-trips byte-for-byte; State holds the fully resolved values (baseline
// value for absent fields, wire value for present ones) so callers never
// have to consult Baselines themselves.
type EntityUpdateMessage struct {
	EntityNum int32
	Present   UpdateFlags
	NoLerp    bool
	State     EntityState

	// Trans is populated only under protocol.VersionNetQuake when the TRANS
	// bit (aliased to UFExtend1/UFTrans) is set: two f32 values, plus a
	// third iff the first equals 2.0 (§4.3).
	Trans []float32

	// FitzQuake/RMQ trailer, populated only under protocols other than
	// NetQuake.
	Alpha      float32 // default 1; present iff Present.Has(UFAlpha)
	LerpFinish float32 // seconds; present iff Present.Has(UFLerpFinish)
	Scale      float32 // default 1; present iff Present.Has(UFScale)
}

func (*EntityUpdateMessage) MessageID() ID { return ID(UFSignal) }

// parseEntityUpdate is entered from ParseMessage once the leading tag byte's
// high bit (SIGNAL) is seen; low7 is that tag's remaining 7 bits, i.e. the
// first flags byte with SIGNAL masked off.
func parseEntityUpdate(r *bindata.Reader, low7 UpdateFlags, state *protocol.State, baselines Baselines) (*EntityUpdateMessage, error) {
	flags := low7

	if flags.Has(UFMoreBits) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		flags |= UpdateFlags(b) << 8

		if flags.Has(UFExtend1) && state.Version != protocol.VersionNetQuake {
			b2, err := r.U8()
			if err != nil {
				return nil, err
			}
			flags |= UpdateFlags(b2) << 16
		}
		if flags.Has(UFExtend2) && state.Version != protocol.VersionNetQuake {
			b3, err := r.U8()
			if err != nil {
				return nil, err
			}
			flags |= UpdateFlags(b3) << 24
		}
	}

	m := &EntityUpdateMessage{Present: flags, NoLerp: flags.Has(UFNoLerp)}

	var entityNum uint16
	var err error
	if flags.Has(UFLongEntity) {
		entityNum, err = r.U16()
	} else {
		var b uint8
		b, err = r.U8()
		entityNum = uint16(b)
	}
	if err != nil {
		return nil, err
	}
	m.EntityNum = int32(entityNum)

	base := baselines.Get(m.EntityNum)
	m.State = *base

	if flags.Has(UFModel) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.State.ModelIndex = int32(b)
	}
	if flags.Has(UFFrame) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.State.Frame = int32(b)
	}
	if flags.Has(UFColormap) {
		if m.State.ColorMap, err = r.U8(); err != nil {
			return nil, err
		}
	}
	if flags.Has(UFSkin) {
		if m.State.Skin, err = r.U8(); err != nil {
			return nil, err
		}
	}
	if flags.Has(UFEffects) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.State.Effects = uint32(b)
	}

	readCoordAngle := func(hasOrigin, hasAngle UpdateFlags, axis int) error {
		if flags.Has(hasOrigin) {
			v, err := protocol.ReadCoord(r, state.Flags)
			if err != nil {
				return err
			}
			m.State.Origin[axis] = v
		}
		if flags.Has(hasAngle) {
			v, err := protocol.ReadAngle(r, state.Flags)
			if err != nil {
				return err
			}
			m.State.Angles[axis] = v
		}
		return nil
	}
	if err := readCoordAngle(UFOrigin1, UFAngle1, 0); err != nil {
		return nil, err
	}
	if err := readCoordAngle(UFOrigin2, UFAngle2, 1); err != nil {
		return nil, err
	}
	if err := readCoordAngle(UFOrigin3, UFAngle3, 2); err != nil {
		return nil, err
	}

	if state.Version == protocol.VersionNetQuake {
		if flags.Has(UFTrans) {
			first, err := r.F32()
			if err != nil {
				return nil, err
			}
			second, err := r.F32()
			if err != nil {
				return nil, err
			}
			m.Trans = []float32{first, second}
			if first == 2.0 {
				third, err := r.F32()
				if err != nil {
					return nil, err
				}
				m.Trans = append(m.Trans, third)
			}
		}
	} else {
		m.Alpha, m.Scale = 1, 1

		if flags.Has(UFModel2) {
			b, err := r.U8()
			if err != nil {
				return nil, err
			}
			m.State.ModelIndex |= int32(b) << 8
		}
		if flags.Has(UFFrame2) {
			b, err := r.U8()
			if err != nil {
				return nil, err
			}
			m.State.Frame |= int32(b) << 8
		}
		if flags.Has(UFAlpha) {
			b, err := r.U8()
			if err != nil {
				return nil, err
			}
			m.Alpha = float32(b) / 255
		}
		if flags.Has(UFScale) {
			b, err := r.U8()
			if err != nil {
				return nil, err
			}
			m.Scale = float32(b) / 16
		}
		if flags.Has(UFLerpFinish) {
			b, err := r.U8()
			if err != nil {
				return nil, err
			}
			m.LerpFinish = float32(b) / 255
		}
	}

	return m, nil
}

func writeEntityUpdate(w *bindata.Writer, m *EntityUpdateMessage, state *protocol.State) {
	flags := m.Present

	w.U8(byte(UFSignal) | byte(flags&0x7f))
	if flags.Has(UFMoreBits) {
		w.U8(uint8(flags >> 8))
		if flags.Has(UFExtend1) && state.Version != protocol.VersionNetQuake {
			w.U8(uint8(flags >> 16))
		}
		if flags.Has(UFExtend2) && state.Version != protocol.VersionNetQuake {
			w.U8(uint8(flags >> 24))
		}
	}

	if flags.Has(UFLongEntity) {
		w.U16(uint16(m.EntityNum))
	} else {
		w.U8(uint8(m.EntityNum))
	}

	if flags.Has(UFModel) {
		w.U8(uint8(m.State.ModelIndex))
	}
	if flags.Has(UFFrame) {
		w.U8(uint8(m.State.Frame))
	}
	if flags.Has(UFColormap) {
		w.U8(m.State.ColorMap)
	}
	if flags.Has(UFSkin) {
		w.U8(m.State.Skin)
	}
	if flags.Has(UFEffects) {
		w.U8(uint8(m.State.Effects))
	}

	writeCoordAngle := func(hasOrigin, hasAngle UpdateFlags, axis int) {
		if flags.Has(hasOrigin) {
			protocol.WriteCoord(w, state.Flags, m.State.Origin[axis])
		}
		if flags.Has(hasAngle) {
			protocol.WriteAngle(w, state.Flags, m.State.Angles[axis])
		}
	}
	writeCoordAngle(UFOrigin1, UFAngle1, 0)
	writeCoordAngle(UFOrigin2, UFAngle2, 1)
	writeCoordAngle(UFOrigin3, UFAngle3, 2)

	if state.Version == protocol.VersionNetQuake {
		if flags.Has(UFTrans) && len(m.Trans) >= 2 {
			w.F32(m.Trans[0])
			w.F32(m.Trans[1])
			if m.Trans[0] == 2.0 && len(m.Trans) >= 3 {
				w.F32(m.Trans[2])
			}
		}
	} else {
		if flags.Has(UFModel2) {
			w.U8(uint8(m.State.ModelIndex >> 8))
		}
		if flags.Has(UFFrame2) {
			w.U8(uint8(m.State.Frame >> 8))
		}
		if flags.Has(UFAlpha) {
			w.U8(uint8(m.Alpha * 255))
		}
		if flags.Has(UFScale) {
			w.U8(uint8(m.Scale * 16))
		}
		if flags.Has(UFLerpFinish) {
			w.U8(uint8(m.LerpFinish * 255))
		}
	}
}
