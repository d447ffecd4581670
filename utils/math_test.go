package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDegRad(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, DegToRad(-90), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, RadToDeg(math.Pi/4), test.ShouldAlmostEqual, 45.)
	test.That(t, RadToDeg(DegToRad(-15)), test.ShouldAlmostEqual, -15.)
}

func TestAngleDiffDeg(t *testing.T) {
	for _, tc := range []struct {
		a1, a2, expected float64
	}{
		{0, 0, 0},
		{10, 350, 20},
		{350, 10, 20},
		{-170, 170, 20},
		{90, -90, 180},
		{720, 1, 1},
	} {
		test.That(t, AngleDiffDeg(tc.a1, tc.a2), test.ShouldAlmostEqual, tc.expected)
	}
}

func TestWrapRad(t *testing.T) {
	test.That(t, WrapRad(0), test.ShouldEqual, 0.)
	test.That(t, WrapRad(math.Pi), test.ShouldEqual, math.Pi)
	test.That(t, WrapRad(3*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, WrapRad(-3*math.Pi/2), test.ShouldAlmostEqual, math.Pi/2)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1+1e-10, 1e-9), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, 1e-9), test.ShouldBeFalse)
}
