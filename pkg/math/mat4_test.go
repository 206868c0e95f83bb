package math

import (
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Compose(Vec3{1, 2, 3}, Identity3(), 1)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Compose(Vec3{10, 20, 30}, Identity3(), 1)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestCompose(t *testing.T) {
	// 90 degrees about Z: x -> y
	rot := Mat3{0, -1, 0, 1, 0, 0, 0, 0, 1}
	m := Compose(Vec3{1, 2, 3}, rot, 2)

	got := m.TransformPoint([3]float32{1, 0, 0})
	want := [3]float32{1, 4, 3}
	for i := range got {
		if abs(got[i]-want[i]) > 1e-5 {
			t.Fatalf("Compose: got %v, want %v", got, want)
		}
	}

	// T * R * S built from separate factors
	translate := Compose(Vec3{1, 2, 3}, Identity3(), 1)
	scale := Compose(Vec3{}, Identity3(), 2)
	same := translate.Mul(rot.Mat4()).Mul(scale)
	for i := range m {
		if abs(m[i]-same[i]) > 1e-5 {
			t.Errorf("element %d: got %f, want %f", i, m[i], same[i])
		}
	}
}

func TestInverse(t *testing.T) {
	m := Compose(Vec3{4, -2, 7}, Mat3{0, -1, 0, 1, 0, 0, 0, 0, 1}, 0.5)
	p := m.Inverse().Mul(m)
	id := Identity()
	for i := range p {
		if abs(p[i]-id[i]) > 1e-4 {
			t.Fatalf("M^-1 * M element %d = %f", i, p[i])
		}
	}

	back := m.Inverse().TransformPoint(m.TransformPoint([3]float32{1, 2, 3}))
	for i, want := range [3]float32{1, 2, 3} {
		if abs(back[i]-want) > 1e-4 {
			t.Fatalf("inverse did not undo the transform: %v", back)
		}
	}

	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
