package protocol

import (
	"math"

	"github.com/qdemtools/qdem/bindata"
)

// roundHalfAwayFromZero rounds to the nearest integer, breaking ties away
// from zero (as opposed to Go's math.Round, which already does this -
// kept as a named wrapper so the rounding policy is documented at the call
// site, per §4.2).
func roundHalfAwayFromZero(v float64) float64 {
	return math.Round(v)
}

// ReadCoord decodes one coordinate component using the representation
// selected by flags, tested in the fixed order from §4.2: FLOATCOORD,
// INT32COORD, 24BITCOORD, else the default 1/8-scaled i16.
func ReadCoord(r *bindata.Reader, flags Flags) (float32, error) {
	switch {
	case flags.Has(FlagFloatCoord):
		return r.F32()

	case flags.Has(FlagInt32Coord):
		v, err := r.I32()
		if err != nil {
			return 0, err
		}
		return float32(v) / 16, nil

	case flags.Has(Flag24BitCoord):
		intPart, err := r.I16()
		if err != nil {
			return 0, err
		}
		fracPart, err := r.I8()
		if err != nil {
			return 0, err
		}
		return float32(intPart) + float32(fracPart)/255, nil

	default:
		v, err := r.I16()
		if err != nil {
			return 0, err
		}
		return float32(v) / 8, nil
	}
}

// WriteCoord encodes one coordinate component using the representation
// selected by flags, mirroring ReadCoord.
func WriteCoord(w *bindata.Writer, flags Flags, value float32) {
	switch {
	case flags.Has(FlagFloatCoord):
		w.F32(value)

	case flags.Has(FlagInt32Coord):
		w.I32(int32(roundHalfAwayFromZero(float64(value) * 16)))

	case flags.Has(Flag24BitCoord):
		intPart, fracPart := math.Modf(float64(value))
		w.I16(int16(intPart))
		w.I8(int8(roundHalfAwayFromZero(fracPart * 255)))

	default:
		w.I16(int16(roundHalfAwayFromZero(float64(value) * 8)))
	}
}

// ReadAngle decodes one angle component (degrees) using the representation
// selected by flags: FLOATANGLE, SHORTANGLE, else the default 360/256-scaled
// i8.
func ReadAngle(r *bindata.Reader, flags Flags) (float32, error) {
	switch {
	case flags.Has(FlagFloatAngle):
		return r.F32()

	case flags.Has(FlagShortAngle):
		v, err := r.I16()
		if err != nil {
			return 0, err
		}
		return float32(v) * (360.0 / 65536.0), nil

	default:
		v, err := r.I8()
		if err != nil {
			return 0, err
		}
		return float32(v) * (360.0 / 256.0), nil
	}
}

// WriteAngle encodes one angle component (degrees) using the representation
// selected by flags, mirroring ReadAngle.
func WriteAngle(w *bindata.Writer, flags Flags, value float32) {
	switch {
	case flags.Has(FlagFloatAngle):
		w.F32(value)

	case flags.Has(FlagShortAngle):
		w.I16(int16(roundHalfAwayFromZero(float64(value) / 360 * 65536)))

	default:
		w.I8(int8(roundHalfAwayFromZero(float64(value) / 360 * 256)))
	}
}
