package qmsg

import "github.com/qdemtools/qdem/bindata"

// DefaultViewHeight is the view-height default used when a ClientData
// message omits that field (§4.3).
const DefaultViewHeight float32 = 22.0

// ClientDataMessage is the per-player HUD state update: ammo, health,
// armor, items, weapon. It is the wire source of ClientStats (see the demo
// package's projection) and the sole target of stats reconstruction's
// rewritten output (§4.8).
//
// Present records exactly which optional ServerUpdateFlags bits were set on
// the wire, independent of the field values themselves, so an unmodified
// message round-trips byte-for-byte. The low/high byte split for
// Armor/Weapon/Ammo/Shells/Nails/Rockets/Cells/WeaponFrame is already folded
// into each field's full value; Present.HasXxx2 governs whether the high
// byte is (re)written.
type ClientDataMessage struct {
	Present ServerUpdateFlags

	ViewHeight  float32
	IdealPitch  float32
	Punch       [3]float32
	Velocity    [3]float32
	Items       ItemFlags
	WeaponFrame uint16
	Armor       int32
	Weapon      uint16 // weapon model precache index
	Health      int16
	Ammo        uint16
	Shells      uint16
	Nails       uint16
	Rockets     uint16
	Cells       uint16

	// ActiveWeapon uses the special byte convention from §3: 0 means the
	// axe, any other value is a single ItemFlags bit.
	ActiveWeapon uint8

	WeaponAlpha float32
}

func (*ClientDataMessage) MessageID() ID { return IDClientData }

func parseClientData(r *bindata.Reader) (*ClientDataMessage, error) {
	lowBits, err := r.U16()
	if err != nil {
		return nil, err
	}
	flags := ServerUpdateFlags(lowBits)

	if flags.Has(SUFExtend1) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		flags |= ServerUpdateFlags(b) << 16
	}
	if flags.Has(SUFExtend2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		flags |= ServerUpdateFlags(b) << 24
	}

	m := &ClientDataMessage{
		Present:     flags,
		ViewHeight:  DefaultViewHeight,
		WeaponAlpha: 1,
	}

	readOptI8 := func(has ServerUpdateFlags) (float32, error) {
		if !flags.Has(has) {
			return 0, nil
		}
		v, err := r.I8()
		return float32(v), err
	}

	if v, err := readOptI8(SUFViewHeight); err != nil {
		return nil, err
	} else if flags.Has(SUFViewHeight) {
		m.ViewHeight = v
	}
	if v, err := readOptI8(SUFIdealPitch); err != nil {
		return nil, err
	} else {
		m.IdealPitch = v
	}
	if v, err := readOptI8(SUFPunch1); err != nil {
		return nil, err
	} else {
		m.Punch[0] = v
	}
	if v, err := readOptI8(SUFVelocity1); err != nil {
		return nil, err
	} else {
		m.Velocity[0] = v * 16
	}

	items, err := r.U32()
	if err != nil {
		return nil, err
	}
	m.Items = ItemFlags(items)

	var weaponFrameLow, weaponLow uint16
	var armorLow int32

	if flags.Has(SUFWeaponFrame) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		weaponFrameLow = uint16(b)
	}
	if flags.Has(SUFArmor) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		armorLow = int32(b)
	}
	if flags.Has(SUFWeapon) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		weaponLow = uint16(b)
	}

	if m.Health, err = r.I16(); err != nil {
		return nil, err
	}
	var ammoLow, shellsLow, nailsLow, rocketsLow, cellsLow uint16
	if b, err := r.U8(); err != nil {
		return nil, err
	} else {
		ammoLow = uint16(b)
	}
	if b, err := r.U8(); err != nil {
		return nil, err
	} else {
		shellsLow = uint16(b)
	}
	if b, err := r.U8(); err != nil {
		return nil, err
	} else {
		nailsLow = uint16(b)
	}
	if b, err := r.U8(); err != nil {
		return nil, err
	} else {
		rocketsLow = uint16(b)
	}
	if b, err := r.U8(); err != nil {
		return nil, err
	} else {
		cellsLow = uint16(b)
	}
	if m.ActiveWeapon, err = r.U8(); err != nil {
		return nil, err
	}

	if v, err := readOptI8(SUFPunch2); err != nil {
		return nil, err
	} else {
		m.Punch[1] = v
	}
	if v, err := readOptI8(SUFVelocity2); err != nil {
		return nil, err
	} else {
		m.Velocity[1] = v * 16
	}
	if v, err := readOptI8(SUFPunch3); err != nil {
		return nil, err
	} else {
		m.Punch[2] = v
	}
	if v, err := readOptI8(SUFVelocity3); err != nil {
		return nil, err
	} else {
		m.Velocity[2] = v * 16
	}

	var weaponHigh, armorHigh int32
	var ammoHigh, shellsHigh, nailsHigh, rocketsHigh, cellsHigh, weaponFrameHigh uint16

	if flags.Has(SUFWeapon2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		weaponHigh = int32(b)
	}
	if flags.Has(SUFArmor2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		armorHigh = int32(b)
	}
	if flags.Has(SUFAmmo2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		ammoHigh = uint16(b)
	}
	if flags.Has(SUFShells2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		shellsHigh = uint16(b)
	}
	if flags.Has(SUFNails2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		nailsHigh = uint16(b)
	}
	if flags.Has(SUFRockets2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		rocketsHigh = uint16(b)
	}
	if flags.Has(SUFCells2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		cellsHigh = uint16(b)
	}
	if flags.Has(SUFWeaponFrame2) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		weaponFrameHigh = uint16(b)
	}
	if flags.Has(SUFWeaponAlpha) {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		m.WeaponAlpha = float32(b) / 255
	}

	m.WeaponFrame = weaponFrameLow | weaponFrameHigh<<8
	m.Armor = armorLow | armorHigh<<8
	m.Weapon = weaponLow | weaponHigh<<8
	m.Ammo = ammoLow | ammoHigh<<8
	m.Shells = shellsLow | shellsHigh<<8
	m.Nails = nailsLow | nailsHigh<<8
	m.Rockets = rocketsLow | rocketsHigh<<8
	m.Cells = cellsLow | cellsHigh<<8

	return m, nil
}

func writeClientData(w *bindata.Writer, m *ClientDataMessage) {
	flags := m.Present
	// Forced invariant, per §4.3: the ARMOR presence bit always mirrors
	// whether armor is nonzero, regardless of how the message was built.
	if m.Armor != 0 {
		flags |= SUFArmor
	} else {
		flags &^= SUFArmor
	}

	w.U16(uint16(flags))
	if flags.Has(SUFExtend1) {
		w.U8(uint8(flags >> 16))
	}
	if flags.Has(SUFExtend2) {
		w.U8(uint8(flags >> 24))
	}

	writeOptI8 := func(has ServerUpdateFlags, v float32) {
		if flags.Has(has) {
			w.I8(int8(v))
		}
	}

	writeOptI8(SUFViewHeight, m.ViewHeight)
	writeOptI8(SUFIdealPitch, m.IdealPitch)
	writeOptI8(SUFPunch1, m.Punch[0])
	writeOptI8(SUFVelocity1, m.Velocity[0]/16)

	w.U32(uint32(m.Items))

	if flags.Has(SUFWeaponFrame) {
		w.U8(uint8(m.WeaponFrame))
	}
	if flags.Has(SUFArmor) {
		w.U8(uint8(m.Armor))
	}
	if flags.Has(SUFWeapon) {
		w.U8(uint8(m.Weapon))
	}

	w.I16(m.Health)
	w.U8(uint8(m.Ammo))
	w.U8(uint8(m.Shells))
	w.U8(uint8(m.Nails))
	w.U8(uint8(m.Rockets))
	w.U8(uint8(m.Cells))
	w.U8(m.ActiveWeapon)

	writeOptI8(SUFPunch2, m.Punch[1])
	writeOptI8(SUFVelocity2, m.Velocity[1]/16)
	writeOptI8(SUFPunch3, m.Punch[2])
	writeOptI8(SUFVelocity3, m.Velocity[2]/16)

	if flags.Has(SUFWeapon2) {
		w.U8(uint8(m.Weapon >> 8))
	}
	if flags.Has(SUFArmor2) {
		w.U8(uint8(m.Armor >> 8))
	}
	if flags.Has(SUFAmmo2) {
		w.U8(uint8(m.Ammo >> 8))
	}
	if flags.Has(SUFShells2) {
		w.U8(uint8(m.Shells >> 8))
	}
	if flags.Has(SUFNails2) {
		w.U8(uint8(m.Nails >> 8))
	}
	if flags.Has(SUFRockets2) {
		w.U8(uint8(m.Rockets >> 8))
	}
	if flags.Has(SUFCells2) {
		w.U8(uint8(m.Cells >> 8))
	}
	if flags.Has(SUFWeaponFrame2) {
		w.U8(uint8(m.WeaponFrame >> 8))
	}
	if flags.Has(SUFWeaponAlpha) {
		w.U8(uint8(m.WeaponAlpha * 255))
	}
}
