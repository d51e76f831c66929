package transform

import (
	"math"
	"testing"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		a, b, c, d float64
		theta      float64
	}{
		{1, 0, 0, 1, 0},
		{0, -1, 1, 0, 270},
		{-1, 0, 0, -1, 180},
		{0, 1, -1, 0, 90},
		{1, -1, 1, 1, 315},
	}
	const tol = 1e-9
	for _, test := range tests {
		m := NewMatrix(test.a, test.b, test.c, test.d, 0, 0)
		got := m.Angle()
		if math.Abs(got-test.theta) > tol {
			t.Fatalf("m=%s expected=%g got=%g", m, test.theta, got)
		}
	}
}

func TestConcatIsCTMPremultiply(t *testing.T) {
	ctm := TranslationMatrix(10, 20)
	ctm.Concat(NewMatrix(2, 0, 0, 2, 0, 0))
	x, y := ctm.Transform(1, 1)
	if x != 12 || y != 22 {
		t.Fatalf("expected (12,22), got (%g,%g)", x, y)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := NewMatrix(2, 0.5, -0.5, 3, 7, -4)
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	x, y := m.Transform(3, 5)
	xp, yp := inv.Transform(x, y)
	if math.Abs(xp-3) > 1e-9 || math.Abs(yp-5) > 1e-9 {
		t.Fatalf("round trip failed: got (%g,%g)", xp, yp)
	}
}

func TestUnrealistic(t *testing.T) {
	if !NewMatrix(1e-9, 0, 0, 1e-9, 0, 0).Unrealistic() {
		t.Fatal("expected degenerate matrix to be flagged unrealistic")
	}
	if IdentityMatrix().Unrealistic() {
		t.Fatal("identity matrix must not be unrealistic")
	}
}

func TestPointDistance(t *testing.T) {
	a := NewPoint(0, 0)
	b := NewPoint(3, 4)
	if got := a.Distance(b); got != 5 {
		t.Fatalf("expected distance 5, got %g", got)
	}
}
