package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Faultbox/vvardenfell/pkg/math"
	"github.com/Faultbox/vvardenfell/pkg/nif"
)

// Skin holds per-vertex bone influences. Vertex v uses the entries
// [v*BonesPerVertex, (v+1)*BonesPerVertex) of BoneIndices and BoneWeights.
type Skin struct {
	BonesPerVertex int
	BoneIndices    []uint16
	BoneWeights    []float32
	Bones          []Bone
}

// Bone is one skeleton bone referenced by a skin.
type Bone struct {
	Name        string
	Node        nif.Ref
	InverseBind math.Mat4 // mesh space to bone space, Y-up
	BindPose    math.Mat4 // bone space to mesh space
}

// bindBone sets the bind matrices of b from the skin data transform t.
func bindBone(b *Bone, t nif.Transform, unitScale float32) {
	b.InverseBind = ConvertTransform(t, unitScale).Matrix()
	b.BindPose = b.InverseBind.Inverse()
}

type influence struct {
	bone   uint16
	weight float32
}

// BuildSkin converts the skin instance skin into per-vertex bone
// influences for a shape with numVertices vertices. Each vertex keeps its
// heaviest influences; their weights are renormalized to sum to one.
func BuildSkin(f *nif.File, skin nif.Ref, numVertices int, opts BuildOptions) (*Skin, error) {
	opts = opts.withDefaults()

	inst, ok := nif.Resolve[*nif.SkinInstance](f, skin)
	if !ok {
		return nil, fmt.Errorf("ref %d is not a skin instance", skin)
	}
	data, ok := nif.Resolve[*nif.SkinData](f, inst.Data)
	if !ok {
		return nil, fmt.Errorf("skin instance %d has no skin data", skin)
	}
	if len(data.Bones) != len(inst.Bones) {
		return nil, fmt.Errorf("%w: %d bones, %d bind poses", ErrSkinMismatch, len(inst.Bones), len(data.Bones))
	}

	bpv := opts.BonesPerVertex
	if part, ok := nif.Resolve[*nif.SkinPartition](f, data.Partition); ok && part.BonesPerVertex() > 0 {
		bpv = part.BonesPerVertex()
	}

	out := &Skin{
		BonesPerVertex: bpv,
		BoneIndices:    make([]uint16, numVertices*bpv),
		BoneWeights:    make([]float32, numVertices*bpv),
		Bones:          make([]Bone, len(inst.Bones)),
	}

	for i, ref := range inst.Bones {
		b := Bone{Node: ref}
		if av, ok := nif.Resolve[nif.Placeable](f, ref); ok {
			b.Name = av.AV().Name
		}
		bindBone(&b, data.Bones[i].Transform, opts.UnitScale)
		out.Bones[i] = b
	}

	perVertex := make([][]influence, numVertices)
	for bi := range data.Bones {
		for _, w := range data.Bones[bi].Weights {
			if int(w.Vertex) >= numVertices {
				return nil, fmt.Errorf("%w: bone %d weights vertex %d of %d", ErrIndexRange, bi, w.Vertex, numVertices)
			}
			if w.Weight <= 0 {
				continue
			}
			perVertex[w.Vertex] = append(perVertex[w.Vertex], influence{bone: uint16(bi), weight: w.Weight})
		}
	}

	for v, infl := range perVertex {
		slices.SortStableFunc(infl, func(a, b influence) int {
			return cmp.Compare(b.weight, a.weight)
		})
		if len(infl) > bpv {
			infl = infl[:bpv]
		}
		var sum float32
		for _, in := range infl {
			sum += in.weight
		}
		for k, in := range infl {
			out.BoneIndices[v*bpv+k] = in.bone
			out.BoneWeights[v*bpv+k] = in.weight / sum
		}
	}
	return out, nil
}
