package model

import (
	"cmp"
	gomath "math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/vvardenfell/pkg/nif"
	"github.com/Faultbox/vvardenfell/pkg/nif/niftest"
)

func TestGenerateNormals(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}, {9, 9, 9}},
		Indices:   []uint32{0, 1, 2},
	}
	GenerateNormals(m)

	require.Len(t, m.Normals, 4)
	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, []float32{0, 1, 0}, m.Normals[i][:], 1e-6, "vertex %d", i)
	}
	assert.Equal(t, [3]float32{}, m.Normals[3], "unused vertex")
}

func TestGenerateNormals_Smooths(t *testing.T) {
	// two faces meeting at a right angle along the edge 0-1
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 1, 3},
	}
	GenerateNormals(m)

	h := float32(gomath.Sqrt2 / 2)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, m.Normals[2][:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, m.Normals[3][:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, h, h}, m.Normals[0][:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, h, h}, m.Normals[1][:], 1e-6)
}

func TestBuildMesh_GenerateNormals(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData(triangle, []uint16{0, 1, 2})
	f := parse(t, b)

	mesh, err := BuildMesh(f, nif.Ref(data), BuildOptions{})
	require.NoError(t, err)
	assert.Nil(t, mesh.Normals)

	mesh, err = BuildMesh(f, nif.Ref(data), BuildOptions{GenerateNormals: true})
	require.NoError(t, err)
	require.Len(t, mesh.Normals, 3)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, mesh.Normals[0][:], 1e-6)
}

func quadMesh() *Mesh {
	return &Mesh{
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{5, 5, 5}, // unused
			{1, 1, 0}, // same position as 4, different UV
		},
		UVSets: [][][2]float32{{
			{0, 0}, {1, 0}, {0, 1},
			{1, 0}, {1, 1}, {0, 1},
			{0, 0},
			{0, 0},
		}},
		Indices: []uint32{0, 1, 2, 3, 4, 5, 4, 7, 5},
		Bounds:  Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{5, 5, 5}},
	}
}

func TestWeldVertices(t *testing.T) {
	m := quadMesh()

	removed := WeldVertices(m)

	assert.Equal(t, 3, removed)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2, 3, 4, 2}, m.Indices)
	assert.Equal(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 1, 0}}, m.Positions)
	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 0}}, m.UVSets[0])
	assert.Nil(t, m.Normals)
	assert.Equal(t, [3]float32{1, 1, 0}, m.Bounds.Max, "unused vertex dropped from bounds")

	assert.Equal(t, 0, WeldVertices(m), "second pass finds nothing")
}

func TestWeldVertices_KeepsDistinctInfluences(t *testing.T) {
	m := quadMesh()
	m.Skin = &Skin{
		BonesPerVertex: 1,
		BoneIndices:    []uint16{0, 0, 0, 1, 0, 0, 0, 0},
		BoneWeights:    []float32{1, 1, 1, 1, 1, 1, 1, 1},
	}

	removed := WeldVertices(m)

	// vertex 3 is bound to another bone than vertex 1
	assert.Equal(t, 2, removed)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 2, 4, 5, 2}, m.Indices)
	assert.Equal(t, []uint16{0, 0, 0, 1, 0, 0}, m.Skin.BoneIndices)
	assert.Len(t, m.Skin.BoneWeights, 6)
}

func TestWeldVertices_NoIndices(t *testing.T) {
	m := &Mesh{Positions: [][3]float32{{0, 0, 0}, {0, 0, 0}}}
	assert.Equal(t, 0, WeldVertices(m))
	assert.Len(t, m.Positions, 2)
}

// gridMesh returns an n by n quad grid whose triangles are listed in a
// scattered order.
func gridMesh(n int) *Mesh {
	m := &Mesh{}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.Positions = append(m.Positions, [3]float32{float32(x), 0, float32(y)})
		}
	}
	var tris [][3]uint32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := uint32(y*(n+1) + x)
			w := uint32(n + 1)
			tris = append(tris, [3]uint32{i, i + w, i + 1}, [3]uint32{i + 1, i + w, i + w + 1})
		}
	}
	for k := range tris {
		t := tris[(k*7919)%len(tris)]
		m.Indices = append(m.Indices, t[:]...)
	}
	return m
}

// cacheMisses counts vertex transforms with a FIFO cache of size entries.
func cacheMisses(indices []uint32, size int) int {
	var fifo []uint32
	misses := 0
	for _, v := range indices {
		if slices.Contains(fifo, v) {
			continue
		}
		misses++
		fifo = append(fifo, v)
		if len(fifo) > size {
			fifo = fifo[1:]
		}
	}
	return misses
}

func triangles(indices []uint32) [][3]uint32 {
	var out [][3]uint32
	for i := 0; i+2 < len(indices); i += 3 {
		out = append(out, [3]uint32{indices[i], indices[i+1], indices[i+2]})
	}
	slices.SortFunc(out, func(a, b [3]uint32) int {
		for k := range a {
			if c := cmp.Compare(a[k], b[k]); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func TestOptimizeVertexCache(t *testing.T) {
	m := gridMesh(16)
	before := slices.Clone(m.Indices)
	positions := slices.Clone(m.Positions)

	OptimizeVertexCache(m)

	assert.Equal(t, triangles(before), triangles(m.Indices), "same triangles, same winding")
	assert.Equal(t, positions, m.Positions)

	scattered := cacheMisses(before, 16)
	optimized := cacheMisses(m.Indices, 16)
	assert.Less(t, optimized*2, scattered, "misses %d before, %d after", scattered, optimized)
	assert.Less(t, optimized, len(m.Indices)/3, "fewer than one miss per triangle")
}

func TestOptimizeVertexCache_Degenerate(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 0, 1, 0, 1, 2, 2, 2, 2},
	}
	before := slices.Clone(m.Indices)
	OptimizeVertexCache(m)
	assert.Equal(t, triangles(before), triangles(m.Indices))

	bad := &Mesh{Positions: [][3]float32{{0, 0, 0}}, Indices: []uint32{0, 1, 2, 0, 2, 1}}
	OptimizeVertexCache(bad)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 1}, bad.Indices, "out of range mesh untouched")
}

func TestBuildScene_MeshPasses(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData(niftest.Geometry{
		Vertices: [][3]float32{{0, 0, 0}, {70, 0, 0}, {0, 70, 0}, {70, 0, 0}, {70, 70, 0}, {0, 70, 0}},
	}, []uint16{0, 1, 2, 3, 4, 5})
	shape := b.Shape("NiTriShape", niftest.AV{Name: "quad"}, data, -1)
	root := b.Node(niftest.AV{Name: "root"}, shape)
	f := parse(t, b, root)

	scene, err := BuildScene(f, BuildOptions{Weld: true, OptimizeCache: true, GenerateNormals: true})
	require.NoError(t, err)

	mesh := scene.Root.Children[0].Mesh
	require.NotNil(t, mesh)
	assert.Len(t, mesh.Positions, 4)
	assert.Len(t, mesh.Normals, 4)
	assert.Len(t, mesh.Indices, 6)
	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), 4)
	}
}
