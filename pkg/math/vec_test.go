package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	n := v.Normalize()
	if n != (Vec3{0.6, 0, 0.8}) {
		t.Errorf("Vec3.Normalize() = %v", n)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should stay zero")
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 3}
	if got := b.Sub(a); got != (Vec3{3, 4, 0}) {
		t.Errorf("Vec3.Sub() = %v", got)
	}
	if got := b.Sub(a).Length(); got != 5 {
		t.Errorf("Vec3.Length() = %v, want 5", got)
	}
	if got := a.Add(b).Scale(0.5); got != (Vec3{2.5, 4, 3}) {
		t.Errorf("midpoint = %v", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, -2}
	if got := a.Min(b); got != (Vec3{1, -1, -2}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
}

func TestVec3Array(t *testing.T) {
	a := [3]float32{1, 2, 3}
	if V3(a).Array() != a {
		t.Errorf("V3/Array round trip changed %v", a)
	}
}
