package qmsg

import (
	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// baselineFlags gates the FitzQuake-era widening of modelindex/frame to two
// bytes each. NetQuake baselines never carry this leading byte; the model
// and frame fields stay single bytes.
type baselineFlags uint8

const (
	baselineLargeModel baselineFlags = 1 << 0
	baselineLargeFrame baselineFlags = 1 << 1
)

// SpawnStaticMessage creates a non-interactive, never-updated entity (decor,
// static collectables before a world EntityUpdate ever touches them). It
// carries the same state fields as a spawn baseline but no entity number:
// the engine assigns the next static slot implicitly.
type SpawnStaticMessage struct {
	State EntityState
}

func (*SpawnStaticMessage) MessageID() ID { return IDSpawnStatic }

func parseSpawnStatic(r *bindata.Reader, state *protocol.State) (*SpawnStaticMessage, error) {
	es, err := readBaselineState(r, state)
	if err != nil {
		return nil, err
	}
	return &SpawnStaticMessage{State: es}, nil
}

func writeSpawnStatic(w *bindata.Writer, m *SpawnStaticMessage, state *protocol.State) {
	writeBaselineState(w, m.State, state)
}

// SpawnBaselineMessage establishes the entity whose absent EntityUpdate
// fields inherit from it for the rest of the stream (§9 "Spawn baseline").
// Parsing it populates the shared Baselines table under EntityNum.
type SpawnBaselineMessage struct {
	EntityNum int32
	State     EntityState
}

func (*SpawnBaselineMessage) MessageID() ID { return IDSpawnBaseline }

func parseSpawnBaseline(r *bindata.Reader, state *protocol.State, baselines Baselines) (*SpawnBaselineMessage, error) {
	entityNum, err := r.U16()
	if err != nil {
		return nil, err
	}
	es, err := readBaselineState(r, state)
	if err != nil {
		return nil, err
	}
	m := &SpawnBaselineMessage{EntityNum: int32(entityNum), State: es}
	baselines[m.EntityNum] = &m.State
	return m, nil
}

func writeSpawnBaseline(w *bindata.Writer, m *SpawnBaselineMessage, state *protocol.State) {
	w.U16(uint16(m.EntityNum))
	writeBaselineState(w, m.State, state)
}

func readBaselineState(r *bindata.Reader, state *protocol.State) (EntityState, error) {
	var es EntityState
	var flags baselineFlags

	if state.Version != protocol.VersionNetQuake {
		b, err := r.U8()
		if err != nil {
			return es, err
		}
		flags = baselineFlags(b)
	}

	modelByte, err := r.U8()
	if err != nil {
		return es, err
	}
	frameByte, err := r.U8()
	if err != nil {
		return es, err
	}
	es.ModelIndex, es.Frame = int32(modelByte), int32(frameByte)

	if flags&baselineLargeModel != 0 {
		hi, err := r.U8()
		if err != nil {
			return es, err
		}
		es.ModelIndex |= int32(hi) << 8
	}
	if flags&baselineLargeFrame != 0 {
		hi, err := r.U8()
		if err != nil {
			return es, err
		}
		es.Frame |= int32(hi) << 8
	}

	if es.ColorMap, err = r.U8(); err != nil {
		return es, err
	}
	if es.Skin, err = r.U8(); err != nil {
		return es, err
	}

	for i := 0; i < 3; i++ {
		origin, err := protocol.ReadCoord(r, state.Flags)
		if err != nil {
			return es, err
		}
		angle, err := protocol.ReadAngle(r, state.Flags)
		if err != nil {
			return es, err
		}
		es.Origin[i], es.Angles[i] = origin, angle
	}

	return es, nil
}

func writeBaselineState(w *bindata.Writer, es EntityState, state *protocol.State) {
	var flags baselineFlags
	if es.ModelIndex > 0xff {
		flags |= baselineLargeModel
	}
	if es.Frame > 0xff {
		flags |= baselineLargeFrame
	}

	if state.Version != protocol.VersionNetQuake {
		w.U8(uint8(flags))
	}

	w.U8(uint8(es.ModelIndex))
	w.U8(uint8(es.Frame))
	if flags&baselineLargeModel != 0 {
		w.U8(uint8(es.ModelIndex >> 8))
	}
	if flags&baselineLargeFrame != 0 {
		w.U8(uint8(es.Frame >> 8))
	}

	w.U8(es.ColorMap)
	w.U8(es.Skin)

	for i := 0; i < 3; i++ {
		protocol.WriteCoord(w, state.Flags, es.Origin[i])
		protocol.WriteAngle(w, state.Flags, es.Angles[i])
	}
}
