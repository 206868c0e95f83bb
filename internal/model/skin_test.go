package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/vvardenfell/pkg/math"
	"github.com/Faultbox/vvardenfell/pkg/nif"
	"github.com/Faultbox/vvardenfell/pkg/nif/niftest"
)

func skinnedFile(t *testing.T) (*nif.File, nif.Ref) {
	t.Helper()
	b := niftest.New()
	pelvis := b.Node(niftest.AV{Name: "Bip01 Pelvis"})
	spine := b.Node(niftest.AV{Name: "Bip01 Spine"})
	data := b.SkinData(
		[]niftest.Weight{{Vertex: 0, Weight: 0.5}, {Vertex: 2, Weight: 0.2}},
		[]niftest.Weight{{Vertex: 0, Weight: 0.25}, {Vertex: 1, Weight: 1}, {Vertex: 2, Weight: 0.6}},
	)
	skin := b.SkinInstance(data, pelvis, pelvis, spine)
	return parse(t, b, pelvis), nif.Ref(skin)
}

func TestBuildSkin(t *testing.T) {
	f, skin := skinnedFile(t)

	s, err := BuildSkin(f, skin, 4, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultBonesPerVertex, s.BonesPerVertex)
	require.Len(t, s.BoneIndices, 16)
	require.Len(t, s.BoneWeights, 16)
	require.Len(t, s.Bones, 2)
	assert.Equal(t, "Bip01 Pelvis", s.Bones[0].Name)
	assert.Equal(t, "Bip01 Spine", s.Bones[1].Name)
	assert.Equal(t, math.Identity(), s.Bones[0].InverseBind)
	assert.Equal(t, math.Identity(), s.Bones[0].BindPose)

	// vertex 0: pelvis then spine, renormalized
	assert.Equal(t, []uint16{0, 1, 0, 0}, s.BoneIndices[0:4])
	assert.InDeltaSlice(t, []float32{2.0 / 3, 1.0 / 3, 0, 0}, s.BoneWeights[0:4], 1e-6)
	// vertex 2: heaviest first
	assert.Equal(t, []uint16{1, 0, 0, 0}, s.BoneIndices[8:12])
	assert.InDeltaSlice(t, []float32{0.75, 0.25, 0, 0}, s.BoneWeights[8:12], 1e-6)
	// vertex 3 has no influences
	assert.Equal(t, []float32{0, 0, 0, 0}, s.BoneWeights[12:16])
}

func TestBuildSkin_KeepsHeaviestInfluences(t *testing.T) {
	f, skin := skinnedFile(t)

	s, err := BuildSkin(f, skin, 3, BuildOptions{BonesPerVertex: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, s.BonesPerVertex)
	assert.Equal(t, []uint16{0, 1, 1}, s.BoneIndices)
	assert.Equal(t, []float32{1, 1, 1}, s.BoneWeights)
}

func TestBuildSkin_Errors(t *testing.T) {
	b := niftest.New()
	bone := b.Node(niftest.AV{Name: "Bip01"})
	data := b.SkinData([]niftest.Weight{{Vertex: 5, Weight: 1}})
	mismatch := b.SkinInstance(data, bone, bone, bone)
	outOfRange := b.SkinInstance(data, bone, bone)
	f := parse(t, b, bone)

	_, err := BuildSkin(f, nif.Ref(mismatch), 6, BuildOptions{})
	if !errors.Is(err, ErrSkinMismatch) {
		t.Errorf("expected ErrSkinMismatch, got %v", err)
	}
	_, err = BuildSkin(f, nif.Ref(outOfRange), 3, BuildOptions{})
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
	_, err = BuildSkin(f, nif.Ref(bone), 3, BuildOptions{})
	if err == nil {
		t.Error("expected error for a node ref")
	}
}

func TestBindBone(t *testing.T) {
	// bone one unit along x, turned 90 degrees about the source up axis
	var b Bone
	bindBone(&b, nif.Transform{
		Translation: [3]float32{70, 0, 0},
		Rotation:    [9]float32{0, -1, 0, 1, 0, 0, 0, 0, 1},
		Scale:       1,
	}, DefaultUnitScale)

	// the bind pose undoes the inverse bind
	id := b.BindPose.Mul(b.InverseBind)
	for i, want := range math.Identity() {
		assert.InDelta(t, want, id[i], 1e-5, "element %d", i)
	}

	p := [3]float32{0.5, -2, 3}
	back := b.BindPose.TransformPoint(b.InverseBind.TransformPoint(p))
	assert.InDeltaSlice(t, p[:], back[:], 1e-5)
}
