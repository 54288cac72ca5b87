package guestmath

import "testing"

func almostEqual(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.01
}

func TestFromIntAndBack(t *testing.T) {
	v := FromInt(3)
	if v != 3<<16 {
		t.Errorf("FromInt(3) = %d, want %d", v, 3<<16)
	}
}

func TestMulDiv(t *testing.T) {
	a := FromFloat32(2.5)
	b := FromFloat32(4.0)

	prod := Mul(a, b)
	if !almostEqual(ToFloat32(prod), 10.0) {
		t.Errorf("Mul(2.5,4.0) = %v, want ~10.0", ToFloat32(prod))
	}

	quot := Div(b, a)
	if !almostEqual(ToFloat32(quot), 1.6) {
		t.Errorf("Div(4.0,2.5) = %v, want ~1.6", ToFloat32(quot))
	}
}

func TestAbs(t *testing.T) {
	v := FromFloat32(-3.5)
	if got := ToFloat32(Abs(v)); !almostEqual(got, 3.5) {
		t.Errorf("Abs(-3.5) = %v, want 3.5", got)
	}
}

func TestSqrt(t *testing.T) {
	v := FromFloat32(9.0)
	if got := ToFloat32(Sqrt(v)); !almostEqual(got, 3.0) {
		t.Errorf("Sqrt(9.0) = %v, want 3.0", got)
	}
}

func TestPowIsNarrowCubeRoot(t *testing.T) {
	v := FromFloat32(27.0)
	// Pow ignores its exponent argument entirely, by the original
	// contract: it always computes a cube root.
	got := ToFloat32(Pow(v, FromInt(2)))
	if !almostEqual(got, 3.0) {
		t.Errorf("Pow(27,2) = %v, want 3.0 (narrow cube-root contract)", got)
	}
}
