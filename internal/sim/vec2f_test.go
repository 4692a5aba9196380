package sim

import (
	"math"
	"testing"
)

func approxEqual(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("got %v, want %v (tolerance %v)", got, want, tolerance)
	}
}

func TestVec2fArithmetic(t *testing.T) {
	a := Vec2f{X: 1, Y: 2}
	b := Vec2f{X: 3, Y: -1}

	approxEqual(t, a.Add(b).X, 4, 1e-9)
	approxEqual(t, a.Add(b).Y, 1, 1e-9)
	approxEqual(t, a.Sub(b).X, -2, 1e-9)
	approxEqual(t, a.Mul(2).Y, 4, 1e-9)
	approxEqual(t, a.AddScaled(b, 2).X, 7, 1e-9)
	approxEqual(t, a.Distance(a), 0, 1e-9)
}

func TestHeadingVec2fConvention(t *testing.T) {
	// direction 0 points along +y, positive angles rotate clockwise
	// (spec.md §3, §4.4 "Numerical note").
	h := headingVec2f(0)
	approxEqual(t, h.X, 0, 1e-9)
	approxEqual(t, h.Y, 1, 1e-9)

	h = headingVec2f(90)
	approxEqual(t, h.X, 1, 1e-9)
	approxEqual(t, h.Y, 0, 1e-9)

	h = headingVec2f(-180)
	approxEqual(t, h.X, 0, 1e-9)
	approxEqual(t, h.Y, -1, 1e-9)

	h = headingVec2f(-90)
	approxEqual(t, h.X, -1, 1e-9)
	approxEqual(t, h.Y, 0, 1e-9)
}

func TestClampf(t *testing.T) {
	cases := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}
	for _, c := range cases {
		if got := clampf(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("clampf(%v,%v,%v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}
