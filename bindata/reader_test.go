package bindata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaderPrimitivesRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.I8(-5)
	w.U16(0xBEEF)
	w.I16(-1234)
	w.U32(0xDEADBEEF)
	w.I32(-70000)
	w.F32(3.5)
	w.CString([]byte("hello"))

	r := NewReader(w.Bytes())

	u8, err := r.U8()
	assert.NoError(t, err)
	assert.EqualValues(t, 0xAB, u8)

	i8, err := r.I8()
	assert.NoError(t, err)
	assert.EqualValues(t, -5, i8)

	u16, err := r.U16()
	assert.NoError(t, err)
	assert.EqualValues(t, 0xBEEF, u16)

	i16, err := r.I16()
	assert.NoError(t, err)
	assert.EqualValues(t, -1234, i16)

	u32, err := r.U32()
	assert.NoError(t, err)
	assert.EqualValues(t, 0xDEADBEEF, u32)

	i32, err := r.I32()
	assert.NoError(t, err)
	assert.EqualValues(t, -70000, i32)

	f32, err := r.F32()
	assert.NoError(t, err)
	assert.EqualValues(t, 3.5, f32)

	s, err := r.CString()
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(s))

	assert.Equal(t, 0, r.Len())
}

func TestReaderUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_, err := r.U32()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReaderSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	_, err := r.Seek(2, SeekStart)
	assert.NoError(t, err)
	b, err := r.U8()
	assert.NoError(t, err)
	assert.EqualValues(t, 3, b)

	_, err = r.Seek(-1, SeekCurrent)
	assert.NoError(t, err)
	b, err = r.U8()
	assert.NoError(t, err)
	assert.EqualValues(t, 3, b)

	_, err = r.Seek(-1, SeekEnd)
	assert.NoError(t, err)
	b, err = r.U8()
	assert.NoError(t, err)
	assert.EqualValues(t, 5, b)
}
