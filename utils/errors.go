package utils

import (
	"github.com/pkg/errors"
)

// NewConfigValidationError returns an error specifying that there was a validation error at
// the given JSON path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError returns an error specifying that a field is required
// at the given JSON path.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}

// JoinPath joins JSON path segments with dots, skipping empty ones.
func JoinPath(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "."
		}
		out += p
	}
	return out
}
