package referenceframe

import "github.com/pkg/errors"

var (
	// ErrUnknownFrame is returned when a name is not in the fixed transform table.
	ErrUnknownFrame = errors.New("unknown frame transform")
	// ErrBadOrigin is returned when an origin tag cannot be parsed back into a transform.
	ErrBadOrigin = errors.New("invalid urdf origin")
	// ErrBadAttitude is returned for non finite camera angles.
	ErrBadAttitude = errors.New("camera attitude must be finite")
)

// NewUnknownFrameError returns an error naming the transform that could not be found.
func NewUnknownFrameError(name string) error {
	return errors.Wrapf(ErrUnknownFrame, "%q", name)
}
