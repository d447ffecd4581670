package spatialmath

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotOrthonormal is returned when a rotation block does not satisfy R·Rᵀ = I.
	ErrNotOrthonormal = errors.New("rotation block is not orthonormal")
	// ErrImproperRotation is returned when a rotation block is orthonormal but is a reflection.
	ErrImproperRotation = errors.New("rotation block has determinant -1")
	// ErrBadBottomRow is returned when a homogeneous transform's last row is not [0 0 0 1].
	ErrBadBottomRow = errors.New("bottom row of homogeneous transform is not [0 0 0 1]")
	// ErrBadShape is returned when a matrix literal is neither 3x3 nor 4x4.
	ErrBadShape = errors.New("transform must be a 3x3 rotation or a 4x4 homogeneous matrix")
	// ErrUnknownExtractionMethod is returned for an extraction method name that is not supported.
	ErrUnknownExtractionMethod = errors.New("unknown euler angle extraction method")
	// ErrBadEulerSequence is returned when an axis sequence string cannot be parsed.
	ErrBadEulerSequence = errors.New("invalid euler axis sequence")
)

// MalformedTransformError reports a matrix that violates the rigid transform invariant.
type MalformedTransformError struct {
	Err    error
	Detail string
}

func (e *MalformedTransformError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("malformed transform: %v", e.Err)
	}
	return fmt.Sprintf("malformed transform: %v (%s)", e.Err, e.Detail)
}

// Unwrap returns the sentinel error describing which invariant was violated.
func (e *MalformedTransformError) Unwrap() error {
	return e.Err
}

func newMalformedError(err error, format string, args ...interface{}) error {
	return &MalformedTransformError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
