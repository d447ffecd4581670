// Package utils contains small helpers shared across framecalc packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(ModAngDeg(a1-a2))-float64(180))
}

// ModAngDeg maps an angle in degrees onto [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// WrapRad maps an angle in radians onto [-pi, pi].
func WrapRad(ang float64) float64 {
	switch {
	case ang < -math.Pi:
		return ang + 2*math.Pi
	case ang > math.Pi:
		return ang - 2*math.Pi
	default:
		return ang
	}
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
