package nif

import "fmt"

// Controller is the base of every animation controller.
type Controller struct {
	Object
	Next      Ref
	Flags     uint16
	Frequency float32
	Phase     float32
	Start     float32
	Stop      float32
	Target    Ref
}

func readController(s *stream, c *Controller) {
	c.Next = s.Ref()
	c.Flags = s.U16()
	c.Frequency = s.F32()
	c.Phase = s.F32()
	c.Start = s.F32()
	c.Stop = s.F32()
	c.Target = s.Ref()
}

// DataController is a controller driven by one data record:
// NiKeyframeController, NiVisController, NiAlphaController and
// NiMaterialColorController.
type DataController struct {
	Controller
	Data Ref
}

func readDataController(s *stream) Record {
	c := &DataController{}
	readController(s, &c.Controller)
	c.Data = s.Ref()
	return c
}

// UVController scrolls texture coordinates.
type UVController struct {
	Controller
	UVSet uint16
	Data  Ref
}

func readUVController(s *stream) Record {
	c := &UVController{}
	readController(s, &c.Controller)
	c.UVSet = s.U16()
	c.Data = s.Ref()
	return c
}

// FlipController cycles the texture of one slot.
type FlipController struct {
	Controller
	Slot    uint32
	Delta   float32
	Sources []Ref
}

func readFlipController(s *stream) Record {
	c := &FlipController{}
	readController(s, &c.Controller)
	c.Slot = s.U32()
	s.F32() // start time, unused
	c.Delta = s.F32()
	c.Sources = s.Refs()
	return c
}

// LookAtController turns its target toward another object.
type LookAtController struct {
	Controller
	LookAt Ref
}

func readLookAtController(s *stream) Record {
	c := &LookAtController{}
	readController(s, &c.Controller)
	c.LookAt = s.Ref()
	return c
}

// PathController moves its target along a curve.
type PathController struct {
	Controller
	BankDirection int32
	MaxBankAngle  float32
	Smoothing     float32
	FollowAxis    uint16
	PathData      Ref
	PercentData   Ref
}

func readPathController(s *stream) Record {
	c := &PathController{}
	readController(s, &c.Controller)
	c.BankDirection = s.I32()
	c.MaxBankAngle = s.F32()
	c.Smoothing = s.F32()
	c.FollowAxis = s.U16()
	c.PathData = s.Ref()
	c.PercentData = s.Ref()
	return c
}

// GeomMorpherController blends morph targets.
type GeomMorpherController struct {
	Controller
	Data         Ref
	AlwaysUpdate bool
}

func readGeomMorpherController(s *stream) Record {
	c := &GeomMorpherController{}
	readController(s, &c.Controller)
	c.Data = s.Ref()
	c.AlwaysUpdate = s.U8() != 0
	return c
}

// Key interpolation types.
const (
	InterpLinear    uint32 = 1
	InterpQuadratic uint32 = 2
	InterpTBC       uint32 = 3
	InterpXYZ       uint32 = 4
	InterpConstant  uint32 = 5
)

// Key is one animation key. Tangents are set for quadratic keys, TBC for
// tension/bias/continuity keys.
type Key[T any] struct {
	Time     float32
	Value    T
	Forward  T
	Backward T
	TBC      [3]float32
}

// KeyGroup is a list of keys sharing one interpolation type.
type KeyGroup[T any] struct {
	Interpolation uint32
	Keys          []Key[T]
}

// readKeyGroup reads a counted key list. The interpolation type is only
// stored when there are keys, except for morph targets where it is always
// present. Quaternion keys carry no quadratic tangents.
func readKeyGroup[T any](s *stream, value func() T, tangents, morph bool) KeyGroup[T] {
	var g KeyGroup[T]
	n := s.count(s.U32(), 8)
	if n == 0 && !morph {
		return g
	}
	g.Interpolation = s.U32()
	if n == 0 {
		return g
	}
	switch g.Interpolation {
	case InterpLinear, InterpConstant, InterpQuadratic, InterpTBC:
	case InterpXYZ:
		// the axis groups follow and are read by the caller
		return g
	default:
		s.Fail(fmt.Errorf("%w: %d", ErrInterpolation, g.Interpolation))
		return g
	}
	g.Keys = make([]Key[T], n)
	for i := 0; i < n && s.Err() == nil; i++ {
		k := &g.Keys[i]
		k.Time = s.F32()
		k.Value = value()
		switch g.Interpolation {
		case InterpQuadratic:
			if tangents {
				k.Forward = value()
				k.Backward = value()
			}
		case InterpTBC:
			k.TBC = [3]float32{s.F32(), s.F32(), s.F32()}
		}
	}
	return g
}

func readFloatKeys(s *stream) KeyGroup[float32] {
	return readKeyGroup(s, s.F32, true, false)
}

func readVec3Keys(s *stream) KeyGroup[[3]float32] {
	return readKeyGroup(s, s.Vec3, true, false)
}

func readVec4Keys(s *stream) KeyGroup[[4]float32] {
	return readKeyGroup(s, s.Vec4, true, false)
}

// KeyframeData holds rotation, translation and scale keys. With XYZ
// rotation the rotation keys are split into three Euler angle groups.
type KeyframeData struct {
	Object
	Rotations    KeyGroup[[4]float32]
	XRotations   KeyGroup[float32]
	YRotations   KeyGroup[float32]
	ZRotations   KeyGroup[float32]
	Translations KeyGroup[[3]float32]
	Scales       KeyGroup[float32]
}

func readKeyframeData(s *stream) Record {
	d := &KeyframeData{}
	d.Rotations = readKeyGroup(s, s.Quat, false, false)
	if d.Rotations.Interpolation == InterpXYZ {
		s.F32()
		d.XRotations = readFloatKeys(s)
		d.YRotations = readFloatKeys(s)
		d.ZRotations = readFloatKeys(s)
	}
	d.Translations = readVec3Keys(s)
	d.Scales = readFloatKeys(s)
	return d
}

// FloatData is NiFloatData.
type FloatData struct {
	Object
	Keys KeyGroup[float32]
}

func readFloatData(s *stream) Record {
	return &FloatData{Keys: readFloatKeys(s)}
}

// PosData is NiPosData.
type PosData struct {
	Object
	Keys KeyGroup[[3]float32]
}

func readPosData(s *stream) Record {
	return &PosData{Keys: readVec3Keys(s)}
}

// ColorData is NiColorData.
type ColorData struct {
	Object
	Keys KeyGroup[[4]float32]
}

func readColorData(s *stream) Record {
	return &ColorData{Keys: readVec4Keys(s)}
}

// VisKey toggles visibility at Time.
type VisKey struct {
	Time    float32
	Visible bool
}

// VisData is NiVisData.
type VisData struct {
	Object
	Keys []VisKey
}

func readVisData(s *stream) Record {
	d := &VisData{}
	n := s.count(s.U32(), 5)
	if n > 0 {
		d.Keys = make([]VisKey, n)
		for i := range d.Keys {
			d.Keys[i] = VisKey{Time: s.F32(), Visible: s.U8() != 0}
		}
	}
	return d
}

// UVData animates offset and tiling: U offset, V offset, U tiling,
// V tiling.
type UVData struct {
	Object
	Groups [4]KeyGroup[float32]
}

func readUVData(s *stream) Record {
	d := &UVData{}
	for i := range d.Groups {
		d.Groups[i] = readFloatKeys(s)
	}
	return d
}

// MorphTarget is one morph shape with its weight keys.
type MorphTarget struct {
	Keys     KeyGroup[float32]
	Vertices [][3]float32
}

// MorphData is NiMorphData.
type MorphData struct {
	Object
	Relative bool
	Morphs   []MorphTarget
}

func readMorphData(s *stream) Record {
	d := &MorphData{}
	morphs := s.count(s.U32(), 8)
	verts := int(s.U32())
	d.Relative = s.U8() != 0
	for i := 0; i < morphs && s.Err() == nil; i++ {
		var m MorphTarget
		m.Keys = readKeyGroup(s, s.F32, true, true)
		m.Vertices = s.Vec3s(verts)
		d.Morphs = append(d.Morphs, m)
	}
	return d
}
