package nif

import (
	"github.com/Faultbox/vvardenfell/pkg/cursor"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// stream adds version-dependent primitives to a cursor.
type stream struct {
	*cursor.Cursor
	version uint32
}

// Bool reads a boolean: four bytes in early versions, one byte later.
func (s *stream) Bool() bool {
	if s.version < byteBoolVersion {
		return s.U32() != 0
	}
	return s.U8() != 0
}

// Str reads a length-prefixed Windows-1252 string.
func (s *stream) Str() string {
	return encoding.Windows1252ToUTF8([]byte(s.LenString()))
}

// Ref reads a record reference.
func (s *stream) Ref() Ref { return Ref(s.I32()) }

// Refs reads a counted list of references.
func (s *stream) Refs() []Ref {
	n := s.count(s.U32(), 4)
	if n == 0 {
		return nil
	}
	refs := make([]Ref, n)
	for i := range refs {
		refs[i] = s.Ref()
	}
	return refs
}

// count validates that n elements of elem bytes can still be read.
// On failure it records a bounds error and returns 0.
func (s *stream) count(n uint32, elem int) int {
	if s.Err() != nil {
		return 0
	}
	if int64(n)*int64(elem) > int64(s.Remaining()) {
		s.Fail(&dataerr.BoundsError{Offset: s.Pos(), Need: int(n) * elem, Len: s.Len()})
		return 0
	}
	return int(n)
}

// Quat reads a w, x, y, z quaternion.
func (s *stream) Quat() [4]float32 { return s.Vec4() }

func (s *stream) Vec2s(n int) [][2]float32 {
	n = s.count(uint32(n), 8)
	if n == 0 {
		return nil
	}
	v := make([][2]float32, n)
	for i := range v {
		v[i] = s.Vec2()
	}
	return v
}

func (s *stream) Vec3s(n int) [][3]float32 {
	n = s.count(uint32(n), 12)
	if n == 0 {
		return nil
	}
	v := make([][3]float32, n)
	for i := range v {
		v[i] = s.Vec3()
	}
	return v
}

func (s *stream) Vec4s(n int) [][4]float32 {
	n = s.count(uint32(n), 16)
	if n == 0 {
		return nil
	}
	v := make([][4]float32, n)
	for i := range v {
		v[i] = s.Vec4()
	}
	return v
}

func (s *stream) U16s(n int) []uint16 {
	n = s.count(uint32(n), 2)
	if n == 0 {
		return nil
	}
	v := make([]uint16, n)
	for i := range v {
		v[i] = s.U16()
	}
	return v
}

func (s *stream) F32s(n int) []float32 {
	n = s.count(uint32(n), 4)
	if n == 0 {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = s.F32()
	}
	return v
}

// Transform reads rotation, translation and scale in skin-data order.
func (s *stream) Transform() Transform {
	var t Transform
	t.Rotation = s.Mat3()
	t.Translation = s.Vec3()
	t.Scale = s.F32()
	return t
}
