package protocol

import (
	"testing"

	"github.com/qdemtools/qdem/bindata"
	"github.com/stretchr/testify/assert"
)

func TestCoordRoundTripFloat(t *testing.T) {
	w := bindata.NewWriter()
	WriteCoord(w, FlagFloatCoord, 123.25)
	r := bindata.NewReader(w.Bytes())
	v, err := ReadCoord(r, FlagFloatCoord)
	assert.NoError(t, err)
	assert.EqualValues(t, 123.25, v)
	assert.Equal(t, 4, w.Len())
}

func TestCoordRoundTripDefault(t *testing.T) {
	w := bindata.NewWriter()
	WriteCoord(w, 0, 100.125)
	r := bindata.NewReader(w.Bytes())
	v, err := ReadCoord(r, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 100.125, v, 1.0/8)
}

func TestCoordSelectionOrder(t *testing.T) {
	// FLOATCOORD must win even if INT32COORD is also set.
	w := bindata.NewWriter()
	WriteCoord(w, FlagFloatCoord|FlagInt32Coord, 1.5)
	assert.Equal(t, 4, w.Len())
}

func TestAngleRoundTripShort(t *testing.T) {
	w := bindata.NewWriter()
	WriteAngle(w, FlagShortAngle, 180)
	r := bindata.NewReader(w.Bytes())
	v, err := ReadAngle(r, FlagShortAngle)
	assert.NoError(t, err)
	// +180 encodes as the int16 minimum, which decodes as -180.
	assert.InDelta(t, -180, v, 360.0/65536.0)
}

func TestAngleDefaultByteScale(t *testing.T) {
	w := bindata.NewWriter()
	WriteAngle(w, 0, 90)
	assert.Equal(t, 1, w.Len())
	r := bindata.NewReader(w.Bytes())
	v, err := ReadAngle(r, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 90, v, 360.0/256.0)
}
