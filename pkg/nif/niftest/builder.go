// Package niftest builds model files in memory for tests.
package niftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Signature is the signature line written for version 4.0.0.2.
const Signature = "NetImmerse File Format, Version 4.0.0.2"

// Builder appends records and assembles a complete file.
type Builder struct {
	Version   uint32
	Signature string
	body      bytes.Buffer
	count     int
}

// New returns a builder for a Morrowind-era 4.0.0.2 file.
func New() *Builder {
	return &Builder{Version: 0x04000002, Signature: Signature}
}

// Begin starts a record and returns its index.
func (b *Builder) Begin(typeName string) int32 {
	b.Str(typeName)
	b.count++
	return int32(b.count - 1)
}

func (b *Builder) U8(v uint8) { b.body.WriteByte(v) }
func (b *Builder) U16(v uint16) { binary.Write(&b.body, binary.LittleEndian, v) }
func (b *Builder) U32(v uint32) { binary.Write(&b.body, binary.LittleEndian, v) }
func (b *Builder) I32(v int32) { binary.Write(&b.body, binary.LittleEndian, v) }
func (b *Builder) F32(v float32) {
	b.U32(math.Float32bits(v))
}

// Bool writes a boolean in the width the version uses.
func (b *Builder) Bool(v bool) {
	var n uint8
	if v {
		n = 1
	}
	if b.Version < 0x04010001 {
		b.U32(uint32(n))
		return
	}
	b.U8(n)
}

// Str writes a u32 length-prefixed string.
func (b *Builder) Str(s string) {
	b.U32(uint32(len(s)))
	b.body.WriteString(s)
}

func (b *Builder) Raw(p []byte) { b.body.Write(p) }

func (b *Builder) Floats(v ...float32) {
	for _, f := range v {
		b.F32(f)
	}
}

// Refs writes a counted reference list.
func (b *Builder) Refs(refs ...int32) {
	b.U32(uint32(len(refs)))
	for _, r := range refs {
		b.I32(r)
	}
}

// Bytes assembles the file with the given roots.
func (b *Builder) Bytes(roots ...int32) []byte {
	var out bytes.Buffer
	out.WriteString(b.Signature)
	out.WriteByte('\n')
	binary.Write(&out, binary.LittleEndian, b.Version)
	binary.Write(&out, binary.LittleEndian, uint32(b.count))
	out.Write(b.body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(len(roots)))
	for _, r := range roots {
		binary.Write(&out, binary.LittleEndian, r)
	}
	return out.Bytes()
}

// ObjectNET writes a name with no extra data and no controller.
func (b *Builder) ObjectNET(name string) {
	b.Str(name)
	b.I32(-1)
	b.I32(-1)
}

// AV describes the placeable part of a node or shape.
type AV struct {
	Name        string
	Flags       uint16
	Translation [3]float32
	Rotation    [9]float32 // zero means identity
	Scale       float32    // zero means 1
	Properties  []int32
}

func (b *Builder) avObject(o AV) {
	b.ObjectNET(o.Name)
	b.U16(o.Flags)
	b.Floats(o.Translation[:]...)
	rot := o.Rotation
	if rot == ([9]float32{}) {
		rot = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	b.Floats(rot[:]...)
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	b.F32(scale)
	b.Floats(0, 0, 0) // velocity
	b.Refs(o.Properties...)
	b.Bool(false) // no bounding volume
}

// Node writes an NiNode.
func (b *Builder) Node(o AV, children ...int32) int32 {
	return b.NodeOf("NiNode", o, children...)
}

// NodeOf writes a node record of the given plain node type.
func (b *Builder) NodeOf(typeName string, o AV, children ...int32) int32 {
	i := b.Begin(typeName)
	b.avObject(o)
	b.Refs(children...)
	b.Refs() // effects
	return i
}

// SwitchNode writes an NiSwitchNode showing child initial.
func (b *Builder) SwitchNode(o AV, initial uint32, children ...int32) int32 {
	i := b.Begin("NiSwitchNode")
	b.avObject(o)
	b.Refs(children...)
	b.Refs()
	b.U32(initial)
	return i
}

// Shape writes an NiTriShape or NiTriStrips.
func (b *Builder) Shape(typeName string, o AV, data, skin int32) int32 {
	i := b.Begin(typeName)
	b.avObject(o)
	b.I32(data)
	b.I32(skin)
	return i
}

// Geometry is the vertex data of a shape data record.
type Geometry struct {
	Vertices [][3]float32
	Normals  [][3]float32
	Colors   [][4]float32
	UVSets   [][][2]float32
	Center   [3]float32
	Radius   float32
}

func (b *Builder) geometry(g Geometry) {
	b.U16(uint16(len(g.Vertices)))
	b.Bool(len(g.Vertices) > 0)
	for _, v := range g.Vertices {
		b.Floats(v[:]...)
	}
	b.Bool(g.Normals != nil)
	for _, v := range g.Normals {
		b.Floats(v[:]...)
	}
	b.Floats(g.Center[:]...)
	b.F32(g.Radius)
	b.Bool(g.Colors != nil)
	for _, v := range g.Colors {
		b.Floats(v[:]...)
	}
	b.U16(uint16(len(g.UVSets)))
	b.Bool(len(g.UVSets) > 0)
	for _, set := range g.UVSets {
		for _, uv := range set {
			b.Floats(uv[:]...)
		}
	}
}

// TriShapeData writes an NiTriShapeData with an index list.
func (b *Builder) TriShapeData(g Geometry, triangles []uint16) int32 {
	i := b.Begin("NiTriShapeData")
	b.geometry(g)
	b.U16(uint16(len(triangles) / 3))
	b.U32(uint32(len(triangles)))
	for _, t := range triangles {
		b.U16(t)
	}
	b.U16(0) // match groups
	return i
}

// TriStripsData writes an NiTriStripsData.
func (b *Builder) TriStripsData(g Geometry, strips ...[]uint16) int32 {
	i := b.Begin("NiTriStripsData")
	b.geometry(g)
	tris := 0
	for _, s := range strips {
		tris += max(len(s)-2, 0)
	}
	b.U16(uint16(tris))
	b.U16(uint16(len(strips)))
	for _, s := range strips {
		b.U16(uint16(len(s)))
	}
	for _, s := range strips {
		for _, v := range s {
			b.U16(v)
		}
	}
	return i
}

// SourceTexture writes an external NiSourceTexture.
func (b *Builder) SourceTexture(file string) int32 {
	i := b.Begin("NiSourceTexture")
	b.ObjectNET("")
	b.U8(1)
	b.Str(file)
	b.U32(5) // pixel layout: default
	b.U32(2) // mip maps: default
	b.U32(3) // alpha: default
	b.U8(1)
	return i
}

// TexturingProperty writes an NiTexturingProperty with a base texture.
func (b *Builder) TexturingProperty(base int32) int32 {
	i := b.Begin("NiTexturingProperty")
	b.ObjectNET("")
	b.U16(0)
	b.U32(2) // apply: modulate
	b.U32(7)
	for slot := 0; slot < 7; slot++ {
		if slot != 0 || base < 0 {
			b.Bool(false)
			continue
		}
		b.Bool(true)
		b.I32(base)
		b.U32(3) // wrap
		b.U32(2) // trilinear
		b.U32(0)
		b.Raw(make([]byte, 6))
	}
	return i
}

// MaterialProperty writes an NiMaterialProperty.
func (b *Builder) MaterialProperty(name string, diffuse [3]float32, alpha float32) int32 {
	i := b.Begin("NiMaterialProperty")
	b.ObjectNET(name)
	b.U16(1)
	b.Floats(1, 1, 1)
	b.Floats(diffuse[:]...)
	b.Floats(0, 0, 0)
	b.Floats(0, 0, 0)
	b.F32(10)
	b.F32(alpha)
	return i
}

// AlphaProperty writes an NiAlphaProperty.
func (b *Builder) AlphaProperty(flags uint16, threshold uint8) int32 {
	i := b.Begin("NiAlphaProperty")
	b.ObjectNET("")
	b.U16(flags)
	b.U8(threshold)
	return i
}

// SkinInstance writes an NiSkinInstance.
func (b *Builder) SkinInstance(data, root int32, bones ...int32) int32 {
	i := b.Begin("NiSkinInstance")
	b.I32(data)
	b.I32(root)
	b.Refs(bones...)
	return i
}

// Weight is one bone influence.
type Weight struct {
	Vertex uint16
	Weight float32
}

// SkinData writes an NiSkinData with identity bind poses. weights holds one
// list per bone.
func (b *Builder) SkinData(weights ...[]Weight) int32 {
	i := b.Begin("NiSkinData")
	identity := func() {
		b.Floats(1, 0, 0, 0, 1, 0, 0, 0, 1)
		b.Floats(0, 0, 0)
		b.F32(1)
	}
	identity()
	b.U32(uint32(len(weights)))
	b.I32(-1) // partition
	for _, bone := range weights {
		identity()
		b.Floats(0, 0, 0)
		b.F32(1)
		b.U16(uint16(len(bone)))
		for _, w := range bone {
			b.U16(w.Vertex)
			b.F32(w.Weight)
		}
	}
	return i
}

// StringExtraData writes an NiStringExtraData.
func (b *Builder) StringExtraData(value string) int32 {
	i := b.Begin("NiStringExtraData")
	b.I32(-1)
	b.U32(uint32(4 + len(value)))
	b.Str(value)
	return i
}

// RawExtraData writes an extra data record of an unsupported type.
func (b *Builder) RawExtraData(typeName string, payload []byte) int32 {
	if len(typeName) < len("ExtraData") {
		panic(fmt.Sprintf("niftest: %q is not an extra data type", typeName))
	}
	i := b.Begin(typeName)
	b.I32(-1)
	b.U32(uint32(len(payload)))
	b.Raw(payload)
	return i
}
