package bindata

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer accumulates primitive little-endian values into a growable buffer.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// Writer's internal buffer and must not be retained across further writes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// RawBytes writes b verbatim.
func (w *Writer) RawBytes(b []byte) {
	w.buf.Write(b)
}

// U8 writes an unsigned byte.
func (w *Writer) U8(v uint8) {
	w.buf.WriteByte(v)
}

// I8 writes a signed byte.
func (w *Writer) I8(v int8) {
	w.buf.WriteByte(byte(v))
}

// U16 writes a little-endian unsigned 16-bit value.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// I16 writes a little-endian signed 16-bit value.
func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

// U32 writes a little-endian unsigned 32-bit value.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// I32 writes a little-endian signed 32-bit value.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// F32 writes a little-endian IEEE-754 32-bit float.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// CString writes value followed by a terminating NUL byte. value must not
// itself contain a NUL byte.
func (w *Writer) CString(value []byte) {
	w.buf.Write(value)
	w.buf.WriteByte(0)
}
