// Package cursor provides a little-endian reader over an in-memory buffer.
//
// Reads never panic. The first read that runs past the end of the buffer
// records a *dataerr.BoundsError; every later read returns zero values and
// Err reports the original failure, so a decoder can read a whole structure
// and check for errors once.
package cursor

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
)

// Cursor reads primitives from a byte slice.
type Cursor struct {
	buf []byte
	pos int
	err error
}

// New returns a cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error { return c.err }

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Fail records err unless an error is already set.
func (c *Cursor) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// take returns the next n bytes and advances, or nil after recording a bounds error.
func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.buf) {
		c.err = &dataerr.BoundsError{Offset: c.pos, Need: n, Len: len(c.buf)}
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// Seek moves to an absolute offset. Seeking to Len() is allowed.
func (c *Cursor) Seek(off int) {
	if c.err != nil {
		return
	}
	if off < 0 || off > len(c.buf) {
		c.err = &dataerr.BoundsError{Offset: off, Need: 0, Len: len(c.buf)}
		return
	}
	c.pos = off
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) {
	c.take(n)
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) []byte {
	if c.err != nil || n < 0 || c.pos+n > len(c.buf) {
		return nil
	}
	return c.buf[c.pos : c.pos+n]
}

// Bytes returns the next n bytes. The slice aliases the buffer.
func (c *Cursor) Bytes(n int) []byte {
	return c.take(n)
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// I8 reads a signed byte.
func (c *Cursor) I8() int8 { return int8(c.U8()) }

// U16 reads a little-endian uint16.
func (c *Cursor) U16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// I16 reads a little-endian int16.
func (c *Cursor) I16() int16 { return int16(c.U16()) }

// U32 reads a little-endian uint32.
func (c *Cursor) U32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() int32 { return int32(c.U32()) }

// U64 reads a little-endian uint64.
func (c *Cursor) U64() uint64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I64 reads a little-endian int64.
func (c *Cursor) I64() int64 { return int64(c.U64()) }

// F32 reads a little-endian IEEE-754 float32.
func (c *Cursor) F32() float32 { return math.Float32frombits(c.U32()) }

// F64 reads a little-endian IEEE-754 float64.
func (c *Cursor) F64() float64 { return math.Float64frombits(c.U64()) }

// Bool32 reads a 4-byte boolean.
func (c *Cursor) Bool32() bool { return c.U32() != 0 }

// FixedString reads n bytes and returns them up to the first NUL.
func (c *Cursor) FixedString(n int) string {
	b := c.take(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// LenString reads a uint32 length followed by that many bytes.
func (c *Cursor) LenString() string {
	n := c.U32()
	if c.err != nil {
		return ""
	}
	if int64(n) > int64(c.Remaining()) {
		c.err = &dataerr.BoundsError{Offset: c.pos, Need: int(n), Len: len(c.buf)}
		return ""
	}
	return string(c.take(int(n)))
}

// CString reads bytes up to and including a NUL terminator.
func (c *Cursor) CString() string {
	if c.err != nil {
		return ""
	}
	i := bytes.IndexByte(c.buf[c.pos:], 0)
	if i < 0 {
		c.err = &dataerr.BoundsError{Offset: c.pos, Need: len(c.buf) - c.pos + 1, Len: len(c.buf)}
		return ""
	}
	s := string(c.buf[c.pos : c.pos+i])
	c.pos += i + 1
	return s
}

// Vec2 reads two float32 values.
func (c *Cursor) Vec2() [2]float32 {
	return [2]float32{c.F32(), c.F32()}
}

// Vec3 reads three float32 values.
func (c *Cursor) Vec3() [3]float32 {
	return [3]float32{c.F32(), c.F32(), c.F32()}
}

// Vec4 reads four float32 values.
func (c *Cursor) Vec4() [4]float32 {
	return [4]float32{c.F32(), c.F32(), c.F32(), c.F32()}
}

// Mat3 reads a row-major 3x3 float32 matrix.
func (c *Cursor) Mat3() [9]float32 {
	var m [9]float32
	for i := range m {
		m[i] = c.F32()
	}
	return m
}
