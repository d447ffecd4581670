// Package config describes a chain of frame transforms in JSON, as read by the framecalc tool.
package config

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/framecalc/referenceframe"
	"go.viam.com/framecalc/spatialmath"
	"go.viam.com/framecalc/utils"
)

// maxPrecision is the most decimals that carry information for a float64.
const maxPrecision = 17

// Config is a chain of transforms composed left to right, plus output settings.
type Config struct {
	Chain      []ChainEntry `json:"chain" jsonschema:"required,description=Transforms composed left to right"`
	Extraction string       `json:"extraction,omitempty" jsonschema:"description=axis-sequence (default) or trigonometric"`
	Precision  *int         `json:"precision,omitempty" jsonschema:"description=Decimals in the origin tag (default 12). -1 prints the shortest exact form"`
	Joint      *Joint       `json:"joint,omitempty"`
	Plot       *Plot        `json:"plot,omitempty"`

	ConfigFilePath string `json:"-"`
}

// ChainEntry is one transform of a chain. Exactly one of Name, Matrix or XYZ/RPY is set.
type ChainEntry struct {
	Name    string      `json:"name,omitempty" jsonschema:"description=A named constant such as drone_T_imu or its swapped inverse"`
	Matrix  [][]float64 `json:"matrix,omitempty" jsonschema:"description=Row major 3x3 rotation or 4x4 homogeneous matrix"`
	XYZ     []float64   `json:"xyz,omitempty" jsonschema:"description=Translation x y z"`
	RPY     []float64   `json:"rpy,omitempty" jsonschema:"description=Fixed axis roll pitch yaw"`
	Degrees bool        `json:"degrees,omitempty" jsonschema:"description=rpy is in degrees rather than radians"`
	Invert  bool        `json:"invert,omitempty" jsonschema:"description=Use the inverse of this entry"`
}

// Joint names the fixed URDF joint printed around the origin.
type Joint struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Plot configures the frame plot.
type Plot struct {
	Output string  `json:"output"`
	Title  string  `json:"title,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Validate checks every part of the config and reports all problems at once.
func (c *Config) Validate() error {
	var errs error
	if len(c.Chain) == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError("chain", errors.New("at least one entry is required")))
	}
	for idx := range c.Chain {
		errs = multierr.Append(errs, c.Chain[idx].Validate(fmt.Sprintf("%s.%d", "chain", idx)))
	}
	if _, err := spatialmath.ParseExtractionMethod(c.Extraction); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError("extraction", err))
	}
	if c.Precision != nil && (*c.Precision < -1 || *c.Precision > maxPrecision) {
		errs = multierr.Append(errs, utils.NewConfigValidationError("precision",
			errors.Errorf("must be between -1 and %d, got %d", maxPrecision, *c.Precision)))
	}
	if c.Joint != nil {
		errs = multierr.Append(errs, c.Joint.Validate("joint"))
	}
	if c.Plot != nil {
		errs = multierr.Append(errs, c.Plot.Validate("plot"))
	}
	return errs
}

// Validate ensures the entry describes exactly one well formed transform.
func (e *ChainEntry) Validate(path string) error {
	kinds := 0
	if e.Name != "" {
		kinds++
	}
	if e.Matrix != nil {
		kinds++
	}
	if e.XYZ != nil || e.RPY != nil {
		kinds++
	}
	switch {
	case kinds == 0:
		return utils.NewConfigValidationError(path, errors.New("one of name, matrix or xyz/rpy is required"))
	case kinds > 1:
		return utils.NewConfigValidationError(path, errors.New("only one of name, matrix or xyz/rpy may be set"))
	}
	if e.Degrees && e.RPY == nil {
		return utils.NewConfigValidationError(path, errors.New("degrees only applies to rpy"))
	}
	if e.XYZ != nil {
		if err := validateTriple(e.XYZ); err != nil {
			return utils.NewConfigValidationError(utils.JoinPath(path, "xyz"), err)
		}
	}
	if e.RPY != nil {
		if err := validateTriple(e.RPY); err != nil {
			return utils.NewConfigValidationError(utils.JoinPath(path, "rpy"), err)
		}
	}
	if _, err := e.Transform(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

func validateTriple(v []float64) error {
	if len(v) != 3 {
		return errors.Errorf("needs 3 values, got %d", len(v))
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.New("values must be finite")
		}
	}
	return nil
}

// Transform builds the entry's transform, inverted if requested.
func (e *ChainEntry) Transform() (*spatialmath.Transform, error) {
	var (
		t   *spatialmath.Transform
		err error
	)
	switch {
	case e.Name != "":
		t, err = referenceframe.TransformByName(e.Name)
	case e.Matrix != nil:
		t, err = spatialmath.NewTransformFromRows(e.Matrix)
	default:
		t, err = e.fromXYZRPY()
	}
	if err != nil {
		return nil, err
	}
	if e.Invert {
		t = t.Inverse()
	}
	return t, nil
}

func (e *ChainEntry) fromXYZRPY() (*spatialmath.Transform, error) {
	var p r3.Vector
	if e.XYZ != nil {
		if err := validateTriple(e.XYZ); err != nil {
			return nil, err
		}
		p = r3.Vector{X: e.XYZ[0], Y: e.XYZ[1], Z: e.XYZ[2]}
	}
	rm := spatialmath.NewIdentityRotation()
	if e.RPY != nil {
		if err := validateTriple(e.RPY); err != nil {
			return nil, err
		}
		unit := spatialmath.Radians
		if e.Degrees {
			unit = spatialmath.Degrees
		}
		rm = spatialmath.RotationFromEuler(spatialmath.SequenceRPY, [3]float64{e.RPY[0], e.RPY[1], e.RPY[2]}, unit)
	}
	return spatialmath.NewTransform(rm, p), nil
}

// Validate ensures all joint names are present.
func (j *Joint) Validate(path string) error {
	if j.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if j.Parent == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "parent")
	}
	if j.Child == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "child")
	}
	return nil
}

// Validate ensures the plot has an output file and a usable scale.
func (p *Plot) Validate(path string) error {
	if p.Output == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "output")
	}
	if p.Scale < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("scale must not be negative, got %v", p.Scale))
	}
	return nil
}

// Transform composes the chain.
func (c *Config) Transform() (*spatialmath.Transform, error) {
	ts := make([]*spatialmath.Transform, 0, len(c.Chain))
	for idx := range c.Chain {
		t, err := c.Chain[idx].Transform()
		if err != nil {
			return nil, errors.Wrapf(err, "chain entry %d", idx)
		}
		ts = append(ts, t)
	}
	return spatialmath.ComposeChain(ts...), nil
}

// ExtractionMethod returns the configured roll-pitch-yaw extraction method.
func (c *Config) ExtractionMethod() (spatialmath.ExtractionMethod, error) {
	return spatialmath.ParseExtractionMethod(c.Extraction)
}

// FormatOptions returns the origin formatting options for the configured precision.
func (c *Config) FormatOptions() referenceframe.FormatOptions {
	opts := referenceframe.DefaultFormatOptions()
	if c.Precision != nil {
		opts.Precision = *c.Precision
	}
	return opts
}
