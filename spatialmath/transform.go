// Package spatialmath defines spatial mathematical operations: rigid homogeneous transforms,
// rotation matrices and their roll-pitch-yaw decompositions.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/framecalc/utils"
)

// Transform is a rigid 4x4 homogeneous transform from a source frame to a destination frame.
// The upper-left 3x3 block is a proper rotation, the last column holds the translation and the
// bottom row is [0 0 0 1]. Transforms are values: no method modifies the receiver.
//
// Names in this module follow the a_T_b convention: a_T_b maps coordinates expressed in frame b
// into frame a, so a_T_b·b_T_c = a_T_c.
type Transform struct {
	m mgl64.Mat4
}

// NewIdentityTransform returns the transform that maps every frame onto itself.
func NewIdentityTransform() *Transform {
	return &Transform{mgl64.Ident4()}
}

// NewTransform builds a transform from a rotation and a translation.
func NewTransform(rm *RotationMatrix, p r3.Vector) *Transform {
	if rm == nil {
		rm = NewIdentityRotation()
	}
	return &Transform{fromRotationTranslation(rm.mat, mgl64.Vec3{p.X, p.Y, p.Z})}
}

// NewTranslation returns a transform that only translates.
func NewTranslation(p r3.Vector) *Transform {
	return NewTransform(nil, p)
}

// NewTransformFromXYZRPY builds a transform from a URDF style translation and roll-pitch-yaw.
func NewTransformFromXYZRPY(xyz r3.Vector, rpy *EulerAngles) *Transform {
	return NewTransform(rpy.RotationMatrix(), xyz)
}

// NewTransformFromRows builds a transform from a matrix literal. A 3x3 literal is treated as a
// rotation with zero translation; a 4x4 literal must be homogeneous. The rotation block is
// validated and a *MalformedTransformError is returned when it is not a proper rotation.
func NewTransformFromRows(rows [][]float64) (*Transform, error) {
	switch len(rows) {
	case 3:
		flat := make([]float64, 0, 9)
		for i, row := range rows {
			if len(row) != 3 {
				return nil, newMalformedError(ErrBadShape, "row %d of a 3x3 rotation has %d columns", i, len(row))
			}
			flat = append(flat, row...)
		}
		rm, err := NewRotationMatrix(flat)
		if err != nil {
			return nil, err
		}
		return NewTransform(rm, r3.Vector{}), nil
	case 4:
		var vecs [4]mgl64.Vec4
		for i, row := range rows {
			if len(row) != 4 {
				return nil, newMalformedError(ErrBadShape, "row %d of a 4x4 transform has %d columns", i, len(row))
			}
			vecs[i] = mgl64.Vec4{row[0], row[1], row[2], row[3]}
		}
		return newTransformFromMat4(mgl64.Mat4FromRows(vecs[0], vecs[1], vecs[2], vecs[3]))
	default:
		return nil, newMalformedError(ErrBadShape, "got %d rows", len(rows))
	}
}

func newTransformFromMat4(m mgl64.Mat4) (*Transform, error) {
	bottom := [4]float64{0, 0, 0, 1}
	for col, want := range bottom {
		if got := m.At(3, col); !(math.Abs(got-want) <= OrthonormalTolerance) {
			return nil, newMalformedError(ErrBadBottomRow, "element (3, %d) is %g", col, got)
		}
	}
	if err := validateRotation(m.Mat3()); err != nil {
		return nil, err
	}
	col := m.Col(3)
	return &Transform{fromRotationTranslation(m.Mat3(), col.Vec3())}, nil
}

func fromRotationTranslation(r mgl64.Mat3, p mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Mat4FromRows(
		mgl64.Vec4{r.At(0, 0), r.At(0, 1), r.At(0, 2), p[0]},
		mgl64.Vec4{r.At(1, 0), r.At(1, 1), r.At(1, 2), p[1]},
		mgl64.Vec4{r.At(2, 0), r.At(2, 1), r.At(2, 2), p[2]},
		mgl64.Vec4{0, 0, 0, 1},
	)
}

// Compose returns a·b: the transform that applies b first and then a. If b maps frame X into Y
// and a maps Y into Z, the result maps X into Z. No renormalization is applied, so long chains
// accumulate floating point drift; see Renormalize.
func Compose(a, b *Transform) *Transform {
	return &Transform{a.m.Mul4(b.m)}
}

// ComposeChain composes transforms left to right, ComposeChain(a, b, c) = a·b·c.
// An empty chain is the identity.
func ComposeChain(ts ...*Transform) *Transform {
	out := NewIdentityTransform()
	for _, t := range ts {
		out = Compose(out, t)
	}
	return out
}

// Invert returns the exact rigid inverse of t: rotation Rᵀ and translation −Rᵀ·p.
func Invert(t *Transform) *Transform {
	rt := t.m.Mat3().Transpose()
	p := t.m.Col(3).Vec3()
	return &Transform{fromRotationTranslation(rt, rt.Mul3x1(p).Mul(-1))}
}

// Inverse is shorthand for Invert(t).
func (t *Transform) Inverse() *Transform {
	return Invert(t)
}

// Renormalize returns t with its rotation block replaced by the nearest proper rotation.
func (t *Transform) Renormalize() *Transform {
	return NewTransform(t.Rotation().Renormalize(), t.Point())
}

// OrthonormalityError measures how far the rotation block has drifted from orthonormal.
func (t *Transform) OrthonormalityError() float64 {
	return t.Rotation().OrthonormalityError()
}

// Rotation returns the upper-left 3x3 rotation block.
func (t *Transform) Rotation() *RotationMatrix {
	return &RotationMatrix{t.m.Mat3()}
}

// Point returns the translation column.
func (t *Transform) Point() r3.Vector {
	return r3.Vector{X: t.m.At(0, 3), Y: t.m.At(1, 3), Z: t.m.At(2, 3)}
}

// At returns the element at the given row and column.
func (t *Transform) At(row, col int) float64 {
	return t.m.At(row, col)
}

// Rows returns a copy of the matrix as a row-major 4x4 literal.
func (t *Transform) Rows() [][]float64 {
	rows := make([][]float64, 4)
	for i := range rows {
		rows[i] = []float64{t.m.At(i, 0), t.m.At(i, 1), t.m.At(i, 2), t.m.At(i, 3)}
	}
	return rows
}

// TransformPoint maps a point expressed in the source frame into the destination frame.
func (t *Transform) TransformPoint(p r3.Vector) r3.Vector {
	return t.Rotation().Mul(p).Add(t.Point())
}

// FrameAxes is the origin and unit basis vectors of a frame, expressed in the parent frame.
type FrameAxes struct {
	Origin r3.Vector
	X      r3.Vector
	Y      r3.Vector
	Z      r3.Vector
}

// Axes returns the values needed to draw the frame: its origin and the three rotation columns.
func (t *Transform) Axes() FrameAxes {
	rm := t.Rotation()
	return FrameAxes{Origin: t.Point(), X: rm.Col(0), Y: rm.Col(1), Z: rm.Col(2)}
}

// AlmostEqual reports whether every element of the two transforms differs by at most tol.
func (t *Transform) AlmostEqual(other *Transform, tol float64) bool {
	for i := 0; i < 16; i++ {
		if !utils.Float64AlmostEqual(t.m[i], other.m[i], tol) {
			return false
		}
	}
	return true
}

func (t *Transform) String() string {
	return fmt.Sprintf(
		"[%+.6f %+.6f %+.6f %+.6f | %+.6f %+.6f %+.6f %+.6f | %+.6f %+.6f %+.6f %+.6f | %+.0f %+.0f %+.0f %+.0f]",
		t.m.At(0, 0), t.m.At(0, 1), t.m.At(0, 2), t.m.At(0, 3),
		t.m.At(1, 0), t.m.At(1, 1), t.m.At(1, 2), t.m.At(1, 3),
		t.m.At(2, 0), t.m.At(2, 1), t.m.At(2, 2), t.m.At(2, 3),
		t.m.At(3, 0), t.m.At(3, 1), t.m.At(3, 2), t.m.At(3, 3))
}
