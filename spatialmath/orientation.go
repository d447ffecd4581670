package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	RotationMatrix() *RotationMatrix
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return AngleBetween(o1, o2) <= 1e-5
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// AngleBetween returns the magnitude, in radians, of the rotation taking o1 onto o2.
func AngleBetween(o1, o2 Orientation) float64 {
	return OrientationBetween(o1, o2).AxisAngles().Theta
}
