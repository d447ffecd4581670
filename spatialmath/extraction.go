package spatialmath

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ExtractionMethod names one of the two supported ways to read roll, pitch and yaw off a rotation.
// Both target the same extrinsic "xyz" convention; they differ in numerics near the singularity
// and are never mixed implicitly.
type ExtractionMethod int

const (
	// ExtractAxisSequence is the general quaternion based decomposition for the "xyz" sequence.
	ExtractAxisSequence ExtractionMethod = iota
	// ExtractTrigonometric reads the angles directly from matrix entries with atan2.
	ExtractTrigonometric
)

// ExtractionMethods lists every supported method, default first.
var ExtractionMethods = []ExtractionMethod{ExtractAxisSequence, ExtractTrigonometric}

func (m ExtractionMethod) String() string {
	switch m {
	case ExtractAxisSequence:
		return "axis-sequence"
	case ExtractTrigonometric:
		return "trigonometric"
	default:
		return "unknown"
	}
}

// ParseExtractionMethod parses a method name. An empty string selects the axis sequence method.
func ParseExtractionMethod(name string) (ExtractionMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "axis-sequence", "xyz":
		return ExtractAxisSequence, nil
	case "trigonometric", "trig":
		return ExtractTrigonometric, nil
	default:
		return 0, errors.Wrapf(ErrUnknownExtractionMethod, "%q", name)
	}
}

// XYZRPY is a translation plus roll-pitch-yaw, the contents of a URDF origin tag.
type XYZRPY struct {
	Translation  r3.Vector
	Orientation  EulerAngles
	Method       ExtractionMethod
	GimbalLocked bool
}

// XYZRPY extracts the translation and roll-pitch-yaw of the transform using the named method.
// The translation is the last column taken verbatim. At gimbal lock the result carries
// GimbalLocked and a yaw of zero.
func (t *Transform) XYZRPY(method ExtractionMethod) (XYZRPY, error) {
	ea, locked, err := t.Rotation().RPY(method)
	if err != nil {
		return XYZRPY{}, err
	}
	return XYZRPY{
		Translation:  t.Point(),
		Orientation:  ea,
		Method:       method,
		GimbalLocked: locked,
	}, nil
}
