// Package bindata provides primitive little-endian readers and writers over
// a byte stream, the lowest layer of the demo codec.
package bindata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrUnexpectedEOF is returned by any Read* method when fewer bytes than
// requested are available in the underlying stream.
var ErrUnexpectedEOF = errors.New("bindata: unexpected EOF")

// Reader reads primitive little-endian values from an in-memory byte slice.
// It supports the same seek semantics as a standard binary stream: absolute,
// relative, and from-end.
type Reader struct {
	b   []byte
	pos int
}

// NewReader creates a Reader over b starting at position 0.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.b) - r.pos
}

// Tell returns the current absolute read position.
func (r *Reader) Tell() int {
	return r.pos
}

// Whence selects the reference point for Seek, matching io.Seeker.
type Whence = int

const (
	SeekStart   Whence = io.SeekStart
	SeekCurrent Whence = io.SeekCurrent
	SeekEnd     Whence = io.SeekEnd
)

// Seek repositions the read cursor. It never validates bounds beyond what is
// needed to keep pos non-negative; reading past the end surfaces
// ErrUnexpectedEOF instead.
func (r *Reader) Seek(offset int, whence Whence) (int, error) {
	var base int
	switch whence {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = r.pos
	case SeekEnd:
		base = len(r.b)
	default:
		return r.pos, fmt.Errorf("bindata: invalid whence %d", whence)
	}
	newPos := base + offset
	if newPos < 0 {
		return r.pos, fmt.Errorf("bindata: negative seek position %d", newPos)
	}
	r.pos = newPos
	return r.pos, nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.b) {
		return nil, ErrUnexpectedEOF
	}
	b := r.b[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// U8 reads an unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed byte.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a little-endian unsigned 16-bit value.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads a little-endian signed 16-bit value.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a little-endian unsigned 32-bit value.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a little-endian signed 32-bit value.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 32-bit float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// CString reads bytes up to (and consuming, but not including) the next NUL
// byte.
func (r *Reader) CString() ([]byte, error) {
	start := r.pos
	for {
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		if b[0] == 0 {
			return r.b[start : r.pos-1], nil
		}
	}
}
