package nif

import "fmt"

// Transform is a node's local transform. Rotation is row-major.
type Transform struct {
	Translation [3]float32
	Rotation    [9]float32
	Scale       float32
}

// IdentityTransform is the transform that changes nothing.
var IdentityTransform = Transform{
	Rotation: [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
	Scale:    1,
}

// Bounding volume kinds.
const (
	BoundBase      uint32 = 0xffffffff
	BoundSphere    uint32 = 0
	BoundBox       uint32 = 1
	BoundCapsule   uint32 = 2
	BoundUnion     uint32 = 4
	BoundHalfSpace uint32 = 5
)

// BoundingVolume is a collision volume attached to an object. Only the
// fields of its Kind are set.
type BoundingVolume struct {
	Kind     uint32
	Center   [3]float32
	Radius   float32    // sphere, capsule
	Axes     [9]float32 // box
	Extents  [3]float32 // box
	Axis     [3]float32 // capsule
	Extent   float32    // capsule
	Plane    [4]float32 // half-space: normal and distance
	Children []BoundingVolume
}

// ObjectNET is the named base of scene objects, properties and textures.
type ObjectNET struct {
	Object
	Name       string
	Extra      Ref
	Controller Ref
}

func readObjectNET(s *stream, o *ObjectNET) {
	o.Name = s.Str()
	o.Extra = s.Ref()
	o.Controller = s.Ref()
}

// AVObject is a placeable scene object.
type AVObject struct {
	ObjectNET
	Flags uint16
	Transform
	Velocity   [3]float32
	Properties []Ref
	Bounds     *BoundingVolume
}

// AV returns the placeable part of a record.
func (o *AVObject) AV() *AVObject { return o }

// Placeable is implemented by nodes, shapes, lights and cameras.
type Placeable interface {
	Record
	AV() *AVObject
}

// Hidden reports whether the hidden flag is set.
func (o *AVObject) Hidden() bool { return o.Flags&0x1 != 0 }

func readAVObject(s *stream, o *AVObject) {
	readObjectNET(s, &o.ObjectNET)
	o.Flags = s.U16()
	o.Translation = s.Vec3()
	o.Rotation = s.Mat3()
	o.Scale = s.F32()
	o.Velocity = s.Vec3()
	o.Properties = s.Refs()
	if s.Bool() {
		bv := readBoundingVolume(s, 0)
		o.Bounds = &bv
	}
}

// maxBoundDepth bounds union nesting.
const maxBoundDepth = 16

func readBoundingVolume(s *stream, depth int) BoundingVolume {
	bv := BoundingVolume{Kind: s.U32()}
	switch bv.Kind {
	case BoundBase:
	case BoundSphere:
		bv.Center = s.Vec3()
		bv.Radius = s.F32()
	case BoundBox:
		bv.Center = s.Vec3()
		bv.Axes = s.Mat3()
		bv.Extents = s.Vec3()
	case BoundCapsule:
		bv.Center = s.Vec3()
		bv.Axis = s.Vec3()
		bv.Extent = s.F32()
		bv.Radius = s.F32()
	case BoundUnion:
		n := s.count(s.U32(), 4)
		if depth >= maxBoundDepth {
			s.Fail(fmt.Errorf("%w: union nested deeper than %d", ErrInvalidBoundingVolume, maxBoundDepth))
			return bv
		}
		for i := 0; i < n && s.Err() == nil; i++ {
			bv.Children = append(bv.Children, readBoundingVolume(s, depth+1))
		}
	case BoundHalfSpace:
		bv.Plane = s.Vec4()
		if s.version >= 0x04020100 {
			bv.Center = s.Vec3()
		}
	default:
		s.Fail(fmt.Errorf("%w: kind %d", ErrInvalidBoundingVolume, bv.Kind))
	}
	return bv
}
