package qmsg

import (
	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// SoundMessage starts a one-shot sound on an entity/channel, per §4.3's
// chunked field layout.
type SoundMessage struct {
	Flags       SoundFlags
	Volume      uint8 // only meaningful if Flags.Has(SoundVolume)
	Attenuation uint8 // in 1/64ths; only meaningful if Flags.Has(SoundAttenuation)
	Entity      uint16
	Channel     uint8
	SoundNum    uint16
	Origin      [3]float32
}

func (*SoundMessage) MessageID() ID { return IDSound }

func parseSound(r *bindata.Reader, state *protocol.State) (*SoundMessage, error) {
	flagByte, err := r.U8()
	if err != nil {
		return nil, err
	}
	m := &SoundMessage{Flags: SoundFlags(flagByte)}

	if m.Flags.Has(SoundVolume) {
		if m.Volume, err = r.U8(); err != nil {
			return nil, err
		}
	}
	if m.Flags.Has(SoundAttenuation) {
		if m.Attenuation, err = r.U8(); err != nil {
			return nil, err
		}
	}

	if m.Flags.Has(SoundLargeEntity) {
		ent, err := r.U16()
		if err != nil {
			return nil, err
		}
		ch, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.Entity, m.Channel = ent, ch
	} else {
		packed, err := r.U16()
		if err != nil {
			return nil, err
		}
		m.Entity, m.Channel = packed>>3, uint8(packed&0x7)
	}

	if m.Flags.Has(SoundLargeSound) {
		if m.SoundNum, err = r.U16(); err != nil {
			return nil, err
		}
	} else {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.SoundNum = uint16(b)
	}

	for i := range m.Origin {
		v, err := protocol.ReadCoord(r, state.Flags)
		if err != nil {
			return nil, err
		}
		m.Origin[i] = v
	}

	return m, nil
}

func writeSound(w *bindata.Writer, m *SoundMessage, state *protocol.State) {
	w.U8(uint8(m.Flags))

	if m.Flags.Has(SoundVolume) {
		w.U8(m.Volume)
	}
	if m.Flags.Has(SoundAttenuation) {
		w.U8(m.Attenuation)
	}

	if m.Flags.Has(SoundLargeEntity) {
		w.U16(m.Entity)
		w.U8(m.Channel)
	} else {
		w.U16(m.Entity<<3 | uint16(m.Channel&0x7))
	}

	if m.Flags.Has(SoundLargeSound) {
		w.U16(m.SoundNum)
	} else {
		w.U8(uint8(m.SoundNum))
	}

	for _, v := range m.Origin {
		protocol.WriteCoord(w, state.Flags, v)
	}
}
