package qmsg

// ServerUpdateFlags gates the optional fields of ClientDataMessage. The low
// 16 bits are always present on the wire; bit 15 (EXTEND1) gates a further
// 8-bit chunk (16..23), whose own top bit (EXTEND2) gates a final 8-bit
// chunk (24..31) - the "16/8/8 chunks" read order of §4.3.
type ServerUpdateFlags uint32

const (
	SUFViewHeight ServerUpdateFlags = 1 << 0
	SUFIdealPitch ServerUpdateFlags = 1 << 1
	SUFPunch1     ServerUpdateFlags = 1 << 2
	SUFVelocity1  ServerUpdateFlags = 1 << 3
	// bit 4 is unused.
	SUFItems    ServerUpdateFlags = 1 << 5
	SUFOnGround ServerUpdateFlags = 1 << 6
	SUFInWater  ServerUpdateFlags = 1 << 7
	// bit 8 is unused.
	SUFWeaponFrame ServerUpdateFlags = 1 << 9
	SUFArmor       ServerUpdateFlags = 1 << 10
	SUFWeapon      ServerUpdateFlags = 1 << 11
	// bits 12..14 are unused.
	SUFExtend1 ServerUpdateFlags = 1 << 15

	SUFPunch2    ServerUpdateFlags = 1 << 16
	SUFVelocity2 ServerUpdateFlags = 1 << 17
	SUFPunch3    ServerUpdateFlags = 1 << 18
	SUFVelocity3 ServerUpdateFlags = 1 << 19
	SUFWeapon2   ServerUpdateFlags = 1 << 20
	SUFArmor2    ServerUpdateFlags = 1 << 21
	SUFAmmo2     ServerUpdateFlags = 1 << 22
	SUFExtend2   ServerUpdateFlags = 1 << 23

	SUFShells2      ServerUpdateFlags = 1 << 24
	SUFNails2       ServerUpdateFlags = 1 << 25
	SUFRockets2     ServerUpdateFlags = 1 << 26
	SUFCells2       ServerUpdateFlags = 1 << 27
	SUFWeaponFrame2 ServerUpdateFlags = 1 << 28
	SUFWeaponAlpha  ServerUpdateFlags = 1 << 29
	// bits 30..31 are unused.
)

// Has reports whether all bits of mask are set.
func (f ServerUpdateFlags) Has(mask ServerUpdateFlags) bool {
	return f&mask == mask
}
