package qmsg

// UpdateFlags gates every optional field of EntityUpdateMessage. Up to 32
// bits, assembled byte by byte: the first byte is always present (and is
// also, for bit 7 / SIGNAL, the dispatch bit examined on the raw message ID
// byte - see §4.3); MOREBITS gates a second byte; EXTEND1 and EXTEND2 gate a
// third and fourth, and only when the ambient protocol is not NetQuake.
type UpdateFlags uint32

const (
	UFMoreBits UpdateFlags = 1 << 0
	UFOrigin1  UpdateFlags = 1 << 1
	UFOrigin2  UpdateFlags = 1 << 2
	UFOrigin3  UpdateFlags = 1 << 3
	UFAngle2   UpdateFlags = 1 << 4
	UFNoLerp   UpdateFlags = 1 << 5
	UFFrame    UpdateFlags = 1 << 6
	UFSignal   UpdateFlags = 1 << 7 // = 0x80, the EntityUpdate dispatch bit

	UFAngle1    UpdateFlags = 1 << 8
	UFAngle3    UpdateFlags = 1 << 9
	UFModel     UpdateFlags = 1 << 10
	UFColormap  UpdateFlags = 1 << 11
	UFSkin      UpdateFlags = 1 << 12
	UFEffects   UpdateFlags = 1 << 13
	UFLongEntity UpdateFlags = 1 << 14
	// NetQuake calls bit 15 TRANS; FitzQuake and later repurpose it as
	// EXTEND1. Both names are kept so call sites can read as intent.
	UFTrans   UpdateFlags = 1 << 15
	UFExtend1 UpdateFlags = 1 << 15

	UFAlpha      UpdateFlags = 1 << 16
	UFFrame2     UpdateFlags = 1 << 17
	UFModel2     UpdateFlags = 1 << 18
	UFLerpFinish UpdateFlags = 1 << 19
	UFScale      UpdateFlags = 1 << 20
	// bits 21, 22 are unused.
	UFExtend2 UpdateFlags = 1 << 23
)

// Has reports whether all bits of mask are set.
func (f UpdateFlags) Has(mask UpdateFlags) bool {
	return f&mask == mask
}
