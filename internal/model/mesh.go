package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/vvardenfell/pkg/math"
	"github.com/Faultbox/vvardenfell/pkg/nif"
)

var (
	ErrNotGeometry  = errors.New("record is not geometry data")
	ErrIndexRange   = errors.New("triangle index out of range")
	ErrNoVertices   = errors.New("geometry has no vertices")
	ErrSkinMismatch = errors.New("skin bone count mismatch")
)

// BuildMesh converts the geometry data record data into a mesh.
func BuildMesh(f *nif.File, data nif.Ref, opts BuildOptions) (*Mesh, error) {
	opts = opts.withDefaults()

	rec, ok := nif.Resolve[nif.ShapeData](f, data)
	if !ok {
		return nil, fmt.Errorf("%w: ref %d", ErrNotGeometry, data)
	}
	g := rec.Shape()
	if len(g.Vertices) == 0 {
		return nil, ErrNoVertices
	}

	mesh := &Mesh{
		Positions: make([][3]float32, len(g.Vertices)),
		Center:    ToYUp(g.Center, opts.UnitScale),
		Radius:    g.Radius * opts.UnitScale,
		Bounds:    emptyBounds(),
	}
	for i, v := range g.Vertices {
		p := ToYUp(v, opts.UnitScale)
		mesh.Positions[i] = p
		updateBounds(&mesh.Bounds, p)
	}
	if len(g.Normals) > 0 {
		mesh.Normals = make([][3]float32, len(g.Normals))
		for i, n := range g.Normals {
			mesh.Normals[i] = ToYUp(n, 1)
		}
	}
	if len(g.Colors) > 0 {
		mesh.Colors = append([][4]float32(nil), g.Colors...)
	}
	for _, set := range g.UVSets {
		mesh.UVSets = append(mesh.UVSets, append([][2]float32(nil), set...))
	}

	switch d := rec.(type) {
	case *nif.TriShapeData:
		mesh.Indices = make([]uint32, 0, len(d.Triangles))
		for _, idx := range d.Triangles {
			mesh.Indices = append(mesh.Indices, uint32(idx))
		}
	case *nif.TriStripsData:
		mesh.Indices = ExpandStrips(d.Strips)
	}

	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Positions) {
			return nil, fmt.Errorf("%w: %d >= %d", ErrIndexRange, idx, len(mesh.Positions))
		}
	}
	if mesh.Normals == nil && opts.GenerateNormals {
		GenerateNormals(mesh)
	}
	return mesh, nil
}

// ExpandStrips converts triangle strips into a triangle list. A strip of
// n indices yields n-2 triangles; every odd triangle has its last two
// indices swapped so all faces keep the same winding.
func ExpandStrips(strips [][]uint16) []uint32 {
	total := 0
	for _, s := range strips {
		if len(s) >= 3 {
			total += (len(s) - 2) * 3
		}
	}
	if total == 0 {
		return nil
	}

	out := make([]uint32, 0, total)
	for _, s := range strips {
		for i := 0; i+2 < len(s); i++ {
			a, b, c := uint32(s[i]), uint32(s[i+1]), uint32(s[i+2])
			if i%2 == 1 {
				b, c = c, b
			}
			out = append(out, a, b, c)
		}
	}
	return out
}

// ToYUp converts a Z-up point to Y-up and scales it.
func ToYUp(v [3]float32, scale float32) [3]float32 {
	return [3]float32{v[0] * scale, v[2] * scale, -v[1] * scale}
}

// basis maps Z-up coordinates to Y-up ones.
var basis = math.Mat3{
	1, 0, 0,
	0, 0, 1,
	0, -1, 0,
}

// ConvertTransform converts a node transform to Y-up. The rotation is
// conjugated by the axis permutation and the translation is scaled.
func ConvertTransform(t nif.Transform, unitScale float32) Transform {
	if unitScale == 0 {
		unitScale = DefaultUnitScale
	}
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	return Transform{
		Translation: math.V3(ToYUp(t.Translation, unitScale)),
		Rotation:    basis.Mul(math.Mat3(t.Rotation)).Mul(basis.Transpose()),
		Scale:       scale,
	}
}
