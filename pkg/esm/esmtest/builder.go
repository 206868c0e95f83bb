// Package esmtest builds synthetic content files for tests.
package esmtest

import (
	"bytes"
	"encoding/binary"
)

// Sub is one subrecord.
type Sub struct {
	Tag  string
	Data []byte
}

// File accumulates records.
type File struct {
	buf bytes.Buffer
}

// NewFile starts a file with a TES3 header record.
func NewFile(author string, masters ...string) *File {
	f := &File{}
	hedr := make([]byte, 300)
	binary.LittleEndian.PutUint32(hedr[0:], 0x3FA66666) // 1.3
	copy(hedr[8:40], author)
	subs := []Sub{{Tag: "HEDR", Data: hedr}}
	for _, m := range masters {
		subs = append(subs, Str("MAST", m), Sub{Tag: "DATA", Data: Pack(uint64(0))})
	}
	f.Record("TES3", 0, subs...)
	return f
}

// Record appends a record with the given subrecords.
func (f *File) Record(tag string, flags uint32, subs ...Sub) *File {
	var body bytes.Buffer
	for _, s := range subs {
		body.WriteString(s.Tag)
		binary.Write(&body, binary.LittleEndian, uint32(len(s.Data)))
		body.Write(s.Data)
	}
	f.RawRecord(tag, uint32(body.Len()), flags, body.Bytes())
	return f
}

// RawRecord appends a record header with an arbitrary declared size.
func (f *File) RawRecord(tag string, size, flags uint32, body []byte) *File {
	f.buf.WriteString(tag)
	binary.Write(&f.buf, binary.LittleEndian, size)
	binary.Write(&f.buf, binary.LittleEndian, uint32(0))
	binary.Write(&f.buf, binary.LittleEndian, flags)
	f.buf.Write(body)
	return f
}

// Bytes returns the encoded file.
func (f *File) Bytes() []byte {
	return f.buf.Bytes()
}

// Str is a NUL-terminated string subrecord.
func Str(tag, s string) Sub {
	return Sub{Tag: tag, Data: append([]byte(s), 0)}
}

// Fixed is a NUL-padded string of n bytes.
func Fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// Raw is a subrecord with a packed payload.
func Raw(tag string, values ...any) Sub {
	return Sub{Tag: tag, Data: Pack(values...)}
}

// Pack encodes values little-endian back to back.
func Pack(values ...any) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		if b, ok := v.([]byte); ok {
			buf.Write(b)
			continue
		}
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// Static returns the subrecords of a STAT record.
func Static(id, model string) []Sub {
	return []Sub{Str("NAME", id), Str("MODL", model)}
}

// Ref returns the subrecords of one cell reference placed at pos.
func Ref(refNum uint32, base string, pos [3]float32, extra ...Sub) []Sub {
	subs := []Sub{Raw("FRMR", refNum), Str("NAME", base)}
	subs = append(subs, extra...)
	return append(subs, Raw("DATA", pos, [3]float32{}))
}

// InteriorCell returns the identity subrecords of an interior cell.
func InteriorCell(name string) []Sub {
	return []Sub{Str("NAME", name), Raw("DATA", uint32(0x01), int32(0), int32(0))}
}

// ExteriorCell returns the identity subrecords of an exterior cell.
func ExteriorCell(name string, x, y int32) []Sub {
	return []Sub{Str("NAME", name), Raw("DATA", uint32(0x02), x, y)}
}

// Heights returns a VHGT subrecord with a global offset and per-vertex deltas.
func Heights(offset float32, deltas []int8) Sub {
	data := Pack(offset)
	for _, d := range deltas {
		data = append(data, byte(d))
	}
	data = append(data, 0, 0, 0)
	return Sub{Tag: "VHGT", Data: data}
}
