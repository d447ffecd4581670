package spatialmath

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/framecalc/utils"
)

// GimbalLockThreshold is the value of |cos(pitch)| below which roll and yaw are no longer separable.
const GimbalLockThreshold = 1e-7

// IsGimbalLocked reports whether a pitch angle (radians) sits on the roll/yaw singularity.
func IsGimbalLocked(pitch float64) bool {
	return math.Abs(math.Cos(pitch)) < GimbalLockThreshold
}

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// They follow the URDF fixed axis convention: rotate by Roll about X, then Pitch about the fixed Y, then Yaw
// about the fixed Z, i.e. R = Rz(yaw)·Ry(pitch)·Rx(roll), the extrinsic "xyz" sequence.
type EulerAngles struct {
	Roll  float64 `json:"roll"`  // phi
	Pitch float64 `json:"pitch"` // theta
	Yaw   float64 `json:"yaw"`   // psi
}

// NewEulerAnglesFromDegrees creates EulerAngles from roll, pitch and yaw given in degrees.
func NewEulerAnglesFromDegrees(roll, pitch, yaw float64) *EulerAngles {
	return &EulerAngles{Roll: utils.DegToRad(roll), Pitch: utils.DegToRad(pitch), Yaw: utils.DegToRad(yaw)}
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	return RotationFromEuler(SequenceRPY, [3]float64{ea.Roll, ea.Pitch, ea.Yaw}, Radians)
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	return ea.RotationMatrix().Quaternion()
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	return QuatToR4AA(ea.Quaternion())
}

// Degrees returns roll, pitch and yaw converted to degrees.
func (ea *EulerAngles) Degrees() [3]float64 {
	return [3]float64{utils.RadToDeg(ea.Roll), utils.RadToDeg(ea.Pitch), utils.RadToDeg(ea.Yaw)}
}

// AngleUnit tells RotationFromEuler how to interpret its angles.
type AngleUnit int

const (
	// Radians is the default unit.
	Radians AngleUnit = iota
	// Degrees converts each angle before building the rotation.
	Degrees
)

// EulerSequence is an ordered triple of rotation axes together with an extrinsic (fixed axes)
// or intrinsic (moving axes) interpretation. Lowercase strings such as "xyz" are extrinsic,
// uppercase strings such as "ZYX" are intrinsic. Extrinsic "xyz" and intrinsic "ZYX" describe
// the same rotation for the same (roll, pitch, yaw) ordering reversed.
type EulerSequence struct {
	axes      [3]int
	extrinsic bool
}

// SequenceRPY is the URDF roll-pitch-yaw convention.
var SequenceRPY = EulerSequence{axes: [3]int{0, 1, 2}, extrinsic: true}

// ParseEulerSequence parses sequences like "xyz" (extrinsic), "ZYX" (intrinsic) or "zxz" (proper Euler).
func ParseEulerSequence(s string) (EulerSequence, error) {
	if len(s) != 3 {
		return EulerSequence{}, errors.Wrapf(ErrBadEulerSequence, "%q must have exactly 3 axes", s)
	}
	var seq EulerSequence
	switch s {
	case strings.ToLower(s):
		seq.extrinsic = true
	case strings.ToUpper(s):
		seq.extrinsic = false
	default:
		return EulerSequence{}, errors.Wrapf(ErrBadEulerSequence, "%q mixes extrinsic and intrinsic axes", s)
	}
	for i, c := range strings.ToLower(s) {
		switch c {
		case 'x':
			seq.axes[i] = 0
		case 'y':
			seq.axes[i] = 1
		case 'z':
			seq.axes[i] = 2
		default:
			return EulerSequence{}, errors.Wrapf(ErrBadEulerSequence, "%q has unknown axis %q", s, c)
		}
	}
	if seq.axes[0] == seq.axes[1] || seq.axes[1] == seq.axes[2] {
		return EulerSequence{}, errors.Wrapf(ErrBadEulerSequence, "%q repeats an axis consecutively", s)
	}
	return seq, nil
}

// Extrinsic reports whether rotations are about the fixed frame's axes.
func (s EulerSequence) Extrinsic() bool {
	return s.extrinsic
}

// Proper reports whether the sequence is a proper Euler sequence (first axis equals last axis).
func (s EulerSequence) Proper() bool {
	return s.axes[0] == s.axes[2]
}

func (s EulerSequence) String() string {
	b := make([]byte, 3)
	for i, a := range s.axes {
		b[i] = "xyz"[a]
	}
	if !s.extrinsic {
		return strings.ToUpper(string(b))
	}
	return string(b)
}

func elementaryRotation(axis int, angle float64) mgl64.Mat3 {
	switch axis {
	case 0:
		return mgl64.Rotate3DX(angle)
	case 1:
		return mgl64.Rotate3DY(angle)
	default:
		return mgl64.Rotate3DZ(angle)
	}
}

// RotationFromEuler builds a rotation matrix from per-axis angles applied in sequence order.
// For the extrinsic sequence "xyz" and angles (a, b, c) this is Rz(c)·Ry(b)·Rx(a); for the
// intrinsic "XYZ" it is Rx(a)·Ry(b)·Rz(c).
func RotationFromEuler(seq EulerSequence, angles [3]float64, unit AngleUnit) *RotationMatrix {
	r := mgl64.Ident3()
	for i, axis := range seq.axes {
		angle := angles[i]
		if unit == Degrees {
			angle = utils.DegToRad(angle)
		}
		e := elementaryRotation(axis, angle)
		if seq.extrinsic {
			r = e.Mul3(r)
		} else {
			r = r.Mul3(e)
		}
	}
	return &RotationMatrix{r}
}

// EulerFromRotation decomposes a rotation into angles (radians, each in [-pi, pi]) for the
// given sequence. The bool reports a degenerate decomposition (gimbal lock), in which case the
// third angle of an extrinsic sequence (the first of an intrinsic one) is set to zero and the
// remaining free angle absorbs the rotation.
//
// See: Bernardes & Viollet, "Quaternion to Euler angles conversion: A direct, general and
// computationally efficient method", PLoS ONE 17(11), 2022.
func EulerFromRotation(seq EulerSequence, rm *RotationMatrix) ([3]float64, bool) {
	q := rm.Quaternion()
	qv := [3]float64{q.Imag, q.Jmag, q.Kmag}
	qw := q.Real

	i, j, k := seq.axes[0], seq.axes[1], seq.axes[2]
	// the method is written for extrinsic sequences; intrinsic ones are solved reversed
	if !seq.extrinsic {
		i, k = k, i
	}
	proper := i == k
	if proper {
		k = 3 - i - j
	}
	sign := float64((i - j) * (j - k) * (k - i) / 2)

	var a, b, c, d float64
	if proper {
		a, b, c, d = qw, qv[i], qv[j], qv[k]*sign
	} else {
		a = qw - qv[j]
		b = qv[i] + qv[k]*sign
		c = qv[j] + qw
		d = qv[k]*sign - qv[i]
	}

	var angles [3]float64
	angles[1] = 2 * math.Atan2(math.Hypot(c, d), math.Hypot(a, b))

	// the middle angle is checked before the Tait-Bryan shift: 0 and pi are the singular points
	atZero := math.Abs(angles[1]) <= GimbalLockThreshold
	atPi := math.Abs(angles[1]-math.Pi) <= GimbalLockThreshold
	degenerate := atZero || atPi

	halfSum := math.Atan2(b, a)
	halfDiff := math.Atan2(d, c)
	switch {
	case !degenerate:
		angles[0] = halfSum - halfDiff
		angles[2] = halfSum + halfDiff
	case atZero:
		angles[2] = 0
		angles[0] = 2 * halfSum
	default:
		angles[2] = 0
		angles[0] = -2 * halfDiff
	}

	if !proper {
		angles[2] *= sign
		angles[1] -= math.Pi / 2
	}
	if !seq.extrinsic {
		angles[0], angles[2] = angles[2], angles[0]
	}
	for n := range angles {
		angles[n] = utils.WrapRad(angles[n])
	}
	return angles, degenerate
}

// axisSequenceRPY is the general sequence decomposition specialised to extrinsic "xyz".
func axisSequenceRPY(rm *RotationMatrix) (EulerAngles, bool) {
	angles, degenerate := EulerFromRotation(SequenceRPY, rm)
	return EulerAngles{Roll: angles[0], Pitch: angles[1], Yaw: angles[2]}, degenerate
}

// trigonometricRPY reads the angles straight off the matrix entries:
//
//	yaw   = atan2(r21, r11)
//	pitch = atan2(-r31, sqrt(r32² + r33²))
//	roll  = atan2(r32, r33)
//
// At gimbal lock yaw is pinned to zero, matching the axis sequence method.
func trigonometricRPY(rm *RotationMatrix) (EulerAngles, bool) {
	r32, r33 := rm.At(2, 1), rm.At(2, 2)
	cosPitch := math.Hypot(r32, r33)
	pitch := math.Atan2(-rm.At(2, 0), cosPitch)
	if cosPitch < GimbalLockThreshold {
		return EulerAngles{Roll: math.Atan2(-rm.At(1, 2), rm.At(1, 1)), Pitch: pitch}, true
	}
	return EulerAngles{
		Roll:  math.Atan2(r32, r33),
		Pitch: pitch,
		Yaw:   math.Atan2(rm.At(1, 0), rm.At(0, 0)),
	}, false
}
