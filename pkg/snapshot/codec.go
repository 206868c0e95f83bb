package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxLen bounds any decoded length so a corrupt file cannot force a huge allocation.
const maxLen = 1 << 26

// encoder writes little-endian primitives to a buffered writer. The first
// write error sticks; later writes are no-ops.
type encoder struct {
	w   *bufio.Writer
	buf [8]byte
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriterSize(w, 64*1024)}
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *encoder) u8(v uint8) {
	e.buf[0] = v
	e.write(e.buf[:1])
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.write(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

func (e *encoder) i32(v int32) { e.u32(uint32(v)) }

func (e *encoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

func (e *encoder) f32(v float32) { e.u32(math.Float32bits(v)) }

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.write([]byte(s))
}

func (e *encoder) vec3(v [3]float32) {
	e.f32(v[0])
	e.f32(v[1])
	e.f32(v[2])
}

func (e *encoder) strs(v []string) {
	e.u32(uint32(len(v)))
	for _, s := range v {
		e.str(s)
	}
}

func (e *encoder) f32s(v []float32) {
	e.u32(uint32(len(v)))
	for _, f := range v {
		e.f32(f)
	}
}

func (e *encoder) i8s(v []int8) {
	e.u32(uint32(len(v)))
	for _, b := range v {
		e.u8(uint8(b))
	}
}

func (e *encoder) bytes(v []byte) {
	e.u32(uint32(len(v)))
	e.write(v)
}

func (e *encoder) u16s(v []uint16) {
	e.u32(uint32(len(v)))
	for _, x := range v {
		e.u16(x)
	}
}

// decoder mirrors encoder with a sticky read error.
type decoder struct {
	r   *bufio.Reader
	buf [8]byte
	err error
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return nil
	}
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		d.err = err
		return nil
	}
	return d.buf[:n]
}

func (d *decoder) u8() uint8 {
	if b := d.read(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) bool() bool { return d.u8() != 0 }

func (d *decoder) u16() uint16 {
	if b := d.read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

func (d *decoder) u64() uint64 {
	if b := d.read(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) f32() float32 { return math.Float32frombits(d.u32()) }

// length reads a count prefix and rejects implausible values.
func (d *decoder) length() int {
	n := d.u32()
	if d.err == nil && n > maxLen {
		d.err = fmt.Errorf("length %d out of range", n)
	}
	if d.err != nil {
		return 0
	}
	return int(n)
}

func (d *decoder) raw(n int) []byte {
	if d.err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.err = err
		return nil
	}
	return b
}

func (d *decoder) str() string {
	return string(d.raw(d.length()))
}

func (d *decoder) vec3() [3]float32 {
	return [3]float32{d.f32(), d.f32(), d.f32()}
}

func (d *decoder) strs() []string {
	n := d.length()
	if n == 0 {
		return nil
	}
	v := make([]string, n)
	for i := range v {
		v[i] = d.str()
	}
	return v
}

func (d *decoder) f32s() []float32 {
	n := d.length()
	if n == 0 {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = d.f32()
	}
	return v
}

func (d *decoder) i8s() []int8 {
	raw := d.raw(d.length())
	if raw == nil {
		return nil
	}
	v := make([]int8, len(raw))
	for i, b := range raw {
		v[i] = int8(b)
	}
	return v
}

func (d *decoder) bytes() []byte {
	return d.raw(d.length())
}

func (d *decoder) u16s() []uint16 {
	n := d.length()
	if n == 0 {
		return nil
	}
	v := make([]uint16, n)
	for i := range v {
		v[i] = d.u16()
	}
	return v
}
