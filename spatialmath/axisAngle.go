package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// See here for a thorough explanation: https://en.wikipedia.org/wiki/Axis%E2%80%93angle_representation
// Basic explanation: Imagine a 3d cartesian grid centered at 0,0,0, and a sphere of radius 1 centered at
// that same point. An orientation can be expressed by first specifying an axis, i.e. a line from the origin
// to a point on that sphere, represented by (rx, ry, rz), and a rotation around that axis, theta.

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates an empty R4AA struct.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// AxisAngles returns the orientation in axis angle representation.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// Quaternion returns orientation in quaternion representation.
func (r4 *R4AA) Quaternion() quat.Number {
	return r4.ToQuat()
}

// EulerAngles returns orientation in Euler angle representation.
func (r4 *R4AA) EulerAngles() *EulerAngles {
	return r4.RotationMatrix().EulerAngles()
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (r4 *R4AA) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(r4.Quaternion())
}

// ToQuat converts an R4 axis angle to a unit quaternion
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/angleToQuaternion/index.htm
func (r4 *R4AA) ToQuat() quat.Number {
	axis := r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
	norm := axis.Norm()
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	// Ensure that point xyz is on the unit sphere
	axis = axis.Mul(1 / norm)

	sinA := math.Sin(r4.Theta / 2)
	return quat.Number{Real: math.Cos(r4.Theta / 2), Imag: axis.X * sinA, Jmag: axis.Y * sinA, Kmag: axis.Z * sinA}
}

// QuatToR4AA converts a quaternion to an axis angle with theta in [0, pi].
func QuatToR4AA(q quat.Number) *R4AA {
	n := quat.Abs(q)
	if n == 0 {
		return NewR4AA()
	}
	q = quat.Scale(1/n, q)
	// q and -q are the same rotation; pick the short way round
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	sinHalf := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if sinHalf < 1e-12 {
		return NewR4AA()
	}
	return &R4AA{
		Theta: 2 * math.Atan2(sinHalf, q.Real),
		RX:    q.Imag / sinHalf,
		RY:    q.Jmag / sinHalf,
		RZ:    q.Kmag / sinHalf,
	}
}
