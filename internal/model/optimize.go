package model

import (
	"encoding/binary"
	gomath "math"
	"slices"

	"github.com/Faultbox/vvardenfell/pkg/math"
)

// GenerateNormals fills m.Normals with smooth vertex normals: the sum of
// the area-weighted face normals of every triangle using the vertex,
// normalized. Vertices no triangle uses get a zero normal.
func GenerateNormals(m *Mesh) {
	normals := make([]math.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0 := math.V3(m.Positions[i0])
		// the cross product length is twice the triangle area
		n := math.V3(m.Positions[i1]).Sub(p0).Cross(math.V3(m.Positions[i2]).Sub(p0))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}

	m.Normals = make([][3]float32, len(normals))
	for i, n := range normals {
		m.Normals[i] = n.Normalize().Array()
	}
}

// WeldVertices merges vertices whose position, normal, color, texture
// coordinates and skin influences are bitwise identical, and drops
// vertices no triangle uses. Surviving vertices are numbered in order of
// first use by the index list. It returns the number of vertices removed.
// A mesh without indices is left as is.
func WeldVertices(m *Mesh) int {
	if len(m.Indices) == 0 {
		return 0
	}
	n := len(m.Positions)

	const unused = ^uint32(0)
	remap := make([]uint32, n)
	for i := range remap {
		remap[i] = unused
	}
	seen := make(map[string]uint32, n)
	var order []int
	var key []byte

	for i, v := range m.Indices {
		if remap[v] == unused {
			key = vertexKey(key[:0], m, int(v))
			id, ok := seen[string(key)]
			if !ok {
				id = uint32(len(order))
				seen[string(key)] = id
				order = append(order, int(v))
			}
			remap[v] = id
		}
		m.Indices[i] = remap[v]
	}

	removed := n - len(order)
	if removed == 0 && slices.IsSorted(order) {
		return 0
	}

	m.Positions = gather(m.Positions, order)
	m.Normals = gather(m.Normals, order)
	m.Colors = gather(m.Colors, order)
	for s := range m.UVSets {
		m.UVSets[s] = gather(m.UVSets[s], order)
	}
	if sk := m.Skin; sk != nil && sk.BonesPerVertex > 0 {
		sk.BoneIndices = gatherSpans(sk.BoneIndices, order, sk.BonesPerVertex)
		sk.BoneWeights = gatherSpans(sk.BoneWeights, order, sk.BonesPerVertex)
	}

	m.Bounds = emptyBounds()
	for _, p := range m.Positions {
		updateBounds(&m.Bounds, p)
	}
	return removed
}

// vertexKey appends the raw attribute bits of vertex v to key.
func vertexKey(key []byte, m *Mesh, v int) []byte {
	put := func(fs ...float32) {
		for _, f := range fs {
			key = binary.LittleEndian.AppendUint32(key, gomath.Float32bits(f))
		}
	}
	put(m.Positions[v][:]...)
	if v < len(m.Normals) {
		put(m.Normals[v][:]...)
	}
	if v < len(m.Colors) {
		put(m.Colors[v][:]...)
	}
	for _, set := range m.UVSets {
		if v < len(set) {
			put(set[v][:]...)
		}
	}
	if sk := m.Skin; sk != nil && sk.BonesPerVertex > 0 {
		lo, hi := v*sk.BonesPerVertex, (v+1)*sk.BonesPerVertex
		if hi <= len(sk.BoneIndices) && hi <= len(sk.BoneWeights) {
			for _, b := range sk.BoneIndices[lo:hi] {
				key = binary.LittleEndian.AppendUint16(key, b)
			}
			put(sk.BoneWeights[lo:hi]...)
		}
	}
	return key
}

func gather[T any](src []T, order []int) []T {
	if src == nil {
		return nil
	}
	out := make([]T, 0, len(order))
	for _, v := range order {
		if v < len(src) {
			out = append(out, src[v])
		}
	}
	return out
}

func gatherSpans[T any](src []T, order []int, width int) []T {
	out := make([]T, 0, len(order)*width)
	for _, v := range order {
		if hi := (v + 1) * width; hi <= len(src) {
			out = append(out, src[v*width:hi]...)
		}
	}
	return out
}

// Vertex cache scoring after Forsyth, "Linear-Speed Vertex Cache
// Optimisation".
const (
	vertexCacheSize   = 32
	cacheDecayPower   = 1.5
	lastTriScore      = 0.75
	valenceBoostScale = 2.0
	valenceBoostPower = 0.5
)

func vertexScore(cachePos, remaining int) float32 {
	if remaining == 0 {
		return -1
	}
	var score float64
	switch {
	case cachePos < 0:
	case cachePos < 3:
		// the last triangle's vertices score the same so that the
		// next triangle is not biased towards one of its edges
		score = lastTriScore
	default:
		score = gomath.Pow(1-float64(cachePos-3)/float64(vertexCacheSize-3), cacheDecayPower)
	}
	score += valenceBoostScale * gomath.Pow(float64(remaining), -valenceBoostPower)
	return float32(score)
}

// OptimizeVertexCache reorders the triangles of m so that consecutive
// triangles share vertices, which cuts vertex shader work on GPUs with a
// post-transform cache. Vertex data is untouched and every triangle keeps
// its winding. A mesh with an out of range index is left as is.
func OptimizeVertexCache(m *Mesh) {
	numTris := len(m.Indices) / 3
	numVerts := len(m.Positions)
	if numTris < 2 {
		return
	}
	tris := m.Indices[:numTris*3]

	remaining := make([]int, numVerts)
	for _, v := range tris {
		if int(v) >= numVerts {
			return
		}
		remaining[v]++
	}

	// triangles of vertex v are adj[offsets[v]:offsets[v+1]]
	offsets := make([]int, numVerts+1)
	for v := range numVerts {
		offsets[v+1] = offsets[v] + remaining[v]
	}
	adj := make([]int, len(tris))
	fill := slices.Clone(offsets[:numVerts])
	for i, v := range tris {
		adj[fill[v]] = i / 3
		fill[v]++
	}

	cachePos := make([]int, numVerts)
	score := make([]float32, numVerts)
	for v := range numVerts {
		cachePos[v] = -1
		score[v] = vertexScore(-1, remaining[v])
	}
	emitted := make([]bool, numTris)

	out := make([]uint32, 0, len(tris))
	cache := make([]uint32, 0, vertexCacheSize+3)
	next := make([]uint32, 0, vertexCacheSize+3)
	cursor, best := 0, -1

	for len(out) < len(tris) {
		if best < 0 {
			// nothing in the cache has triangles left; restart at the
			// first triangle not yet emitted
			for emitted[cursor] {
				cursor++
			}
			best = cursor
		}
		tri := tris[best*3 : best*3+3]
		emitted[best] = true
		out = append(out, tri...)

		next = next[:0]
		for _, v := range tri {
			remaining[v]--
			if !slices.Contains(next, v) {
				next = append(next, v)
			}
		}
		for _, v := range cache {
			if !slices.Contains(tri, v) {
				next = append(next, v)
			}
			cachePos[v] = -1
		}
		cache, next = next, cache

		for i, v := range cache {
			if i < vertexCacheSize {
				cachePos[v] = i
			}
			score[v] = vertexScore(cachePos[v], remaining[v])
		}

		best = -1
		bestScore := float32(-1)
		for _, v := range cache {
			for _, t := range adj[offsets[v]:offsets[v+1]] {
				if emitted[t] {
					continue
				}
				s := score[tris[t*3]] + score[tris[t*3+1]] + score[tris[t*3+2]]
				if s > bestScore {
					best, bestScore = t, s
				}
			}
		}
		if len(cache) > vertexCacheSize {
			cache = cache[:vertexCacheSize]
		}
	}
	copy(tris, out)
}
