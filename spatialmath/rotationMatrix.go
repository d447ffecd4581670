package spatialmath

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/framecalc/utils"
)

// OrthonormalTolerance is the largest Frobenius norm of R·Rᵀ−I accepted when validating a rotation.
// Hand-typed constants such as 0.25881905 / 0.96592583 sit around 1e-9 away from orthonormal.
const OrthonormalTolerance = 1e-6

// RotationMatrix is a 3x3 orthonormal matrix with determinant +1.
type RotationMatrix struct {
	mat mgl64.Mat3
}

// NewRotationMatrix creates a rotation matrix from a row-major slice of length 9.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, newMalformedError(ErrBadShape, "rotation matrix needs 9 elements, got %d", len(m))
	}
	rm := mgl64.Mat3FromRows(
		mgl64.Vec3{m[0], m[1], m[2]},
		mgl64.Vec3{m[3], m[4], m[5]},
		mgl64.Vec3{m[6], m[7], m[8]},
	)
	if err := validateRotation(rm); err != nil {
		return nil, err
	}
	return &RotationMatrix{rm}, nil
}

// NewIdentityRotation returns the rotation matrix representing no rotation.
func NewIdentityRotation() *RotationMatrix {
	return &RotationMatrix{mgl64.Ident3()}
}

// validateRotation checks orthonormality and handedness of a 3x3 block.
func validateRotation(m mgl64.Mat3) error {
	r := mat3ToDense(m)
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	rrt.Sub(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}))
	if drift := mat.Norm(&rrt, 2); !(drift <= OrthonormalTolerance) {
		return newMalformedError(ErrNotOrthonormal, "|R·Rᵀ - I| = %g", drift)
	}
	if det := mat.Det(r); det <= 0 {
		return newMalformedError(ErrImproperRotation, "det(R) = %g", det)
	}
	return nil
}

func mat3ToDense(m mgl64.Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

func denseToMat3(d mat.Matrix) mgl64.Mat3 {
	var m mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, d.At(i, j))
		}
	}
	return m
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat.At(row, col)
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat.At(row, 0), Y: rm.mat.At(row, 1), Z: rm.mat.At(row, 2)}
}

// Col returns the a 3 element vector corresponding to the specified column.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat.At(0, col), Y: rm.mat.At(1, col), Z: rm.mat.At(2, col)}
}

// Mul rotates the given vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	out := rm.mat.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// MatMul returns rm·other, the rotation applying other first.
func (rm *RotationMatrix) MatMul(other *RotationMatrix) *RotationMatrix {
	return &RotationMatrix{rm.mat.Mul3(other.mat)}
}

// Transpose returns the inverse rotation.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	return &RotationMatrix{rm.mat.Transpose()}
}

// Renormalize returns the closest rotation matrix in the Frobenius sense (polar decomposition).
func (rm *RotationMatrix) Renormalize() *RotationMatrix {
	var svd mat.SVD
	if ok := svd.Factorize(mat3ToDense(rm.mat), mat.SVDFull); !ok {
		return rm
	}
	var u, v, polar mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	polar.Mul(&u, v.T())
	if mat.Det(&polar) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		polar.Mul(&u, v.T())
	}
	return &RotationMatrix{denseToMat3(&polar)}
}

// OrthonormalityError returns the Frobenius norm of R·Rᵀ − I.
func (rm *RotationMatrix) OrthonormalityError() float64 {
	r := mat3ToDense(rm.mat)
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	rrt.Sub(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}))
	return mat.Norm(&rrt, 2)
}

// AlmostEqual reports whether every element of the two matrices differs by at most tol.
func (rm *RotationMatrix) AlmostEqual(other *RotationMatrix, tol float64) bool {
	for i := 0; i < 9; i++ {
		if !utils.Float64AlmostEqual(rm.mat[i], other.mat[i], tol) {
			return false
		}
	}
	return true
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// Quaternion returns orientation in quaternion representation.
func (rm *RotationMatrix) Quaternion() quat.Number {
	return rotationMatrixToQuat(rm.mat)
}

// EulerAngles returns orientation in the URDF roll-pitch-yaw convention using the axis sequence method.
func (rm *RotationMatrix) EulerAngles() *EulerAngles {
	ea, _ := axisSequenceRPY(rm)
	return &ea
}

// AxisAngles returns the orientation in axis angle representation.
func (rm *RotationMatrix) AxisAngles() *R4AA {
	return QuatToR4AA(rm.Quaternion())
}

// RPY extracts roll, pitch and yaw with an explicitly named method. The bool reports gimbal lock.
func (rm *RotationMatrix) RPY(method ExtractionMethod) (EulerAngles, bool, error) {
	switch method {
	case ExtractAxisSequence:
		ea, locked := axisSequenceRPY(rm)
		return ea, locked, nil
	case ExtractTrigonometric:
		ea, locked := trigonometricRPY(rm)
		return ea, locked, nil
	default:
		return EulerAngles{}, false, errors.Wrapf(ErrUnknownExtractionMethod, "method %d", int(method))
	}
}

func (rm *RotationMatrix) String() string {
	return fmt.Sprintf("[%+.6f %+.6f %+.6f | %+.6f %+.6f %+.6f | %+.6f %+.6f %+.6f]",
		rm.At(0, 0), rm.At(0, 1), rm.At(0, 2),
		rm.At(1, 0), rm.At(1, 1), rm.At(1, 2),
		rm.At(2, 0), rm.At(2, 1), rm.At(2, 2))
}

// QuatToRotationMatrix converts a quaternion to a rotation matrix. The quaternion is normalized first.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	n := quat.Abs(q)
	if n == 0 {
		return NewIdentityRotation()
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n
	return &RotationMatrix{mgl64.Mat3FromRows(
		mgl64.Vec3{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		mgl64.Vec3{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		mgl64.Vec3{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	)}
}

// rotationMatrixToQuat picks the numerically largest of trace and diagonal to build the quaternion.
func rotationMatrixToQuat(m mgl64.Mat3) quat.Number {
	trace := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	decision := [4]float64{m.At(0, 0), m.At(1, 1), m.At(2, 2), trace}
	choice := 3
	for i := 0; i < 3; i++ {
		if decision[i] > decision[choice] {
			choice = i
		}
	}

	// v holds x, y, z; w the scalar part
	var v [3]float64
	var w float64
	if choice != 3 {
		i := choice
		j := (i + 1) % 3
		k := (j + 1) % 3
		v[i] = 1 - trace + 2*m.At(i, i)
		v[j] = m.At(j, i) + m.At(i, j)
		v[k] = m.At(k, i) + m.At(i, k)
		w = m.At(k, j) - m.At(j, k)
	} else {
		v[0] = m.At(2, 1) - m.At(1, 2)
		v[1] = m.At(0, 2) - m.At(2, 0)
		v[2] = m.At(1, 0) - m.At(0, 1)
		w = 1 + trace
	}
	q := quat.Number{Real: w, Imag: v[0], Jmag: v[1], Kmag: v[2]}
	return quat.Scale(1/quat.Abs(q), q)
}
