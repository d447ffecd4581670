package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/framecalc/logging"
	"go.viam.com/framecalc/referenceframe"
	"go.viam.com/framecalc/spatialmath"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestRead(t *testing.T) {
	t.Setenv("CAM_JOINT", "camera_joint")
	path := writeConfig(t, `{
		"chain": [
			{"name": "drone_T_imu"},
			{"name": "imu_T_cvcam"},
			{"name": "cvcam_T_nedcam"}
		],
		"extraction": "trigonometric",
		"precision": 6,
		"joint": {"name": "${CAM_JOINT}", "parent": "base_link", "child": "camera_link"},
		"plot": {"output": "frames.png", "scale": 2}
	}`)

	logger, logs := logging.NewObservedTestLogger(t)
	cfg, err := Read(context.Background(), path, logger)
	test.That(t, err, test.ShouldBeNil)

	expected := &Config{
		Chain: []ChainEntry{
			{Name: referenceframe.BodyFromIMU},
			{Name: referenceframe.IMUFromCVCamera},
			{Name: referenceframe.CVCameraFromNEDCamera},
		},
		Extraction:     "trigonometric",
		Precision:      lo.ToPtr(6),
		Joint:          &Joint{Name: "camera_joint", Parent: "base_link", Child: "camera_link"},
		Plot:           &Plot{Output: "frames.png", Scale: 2},
		ConfigFilePath: path,
	}
	test.That(t, cmp.Diff(expected, cfg), test.ShouldBeEmpty)
	test.That(t, logs.FilterMessage("read config").Len(), test.ShouldEqual, 1)

	tf, err := cfg.Transform()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.AlmostEqual(referenceframe.NEDCameraToBody(), 1e-12), test.ShouldBeTrue)

	method, err := cfg.ExtractionMethod()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, method, test.ShouldEqual, spatialmath.ExtractTrigonometric)
	test.That(t, cfg.FormatOptions().Precision, test.ShouldEqual, 6)
	test.That(t, cfg.FormatOptions().SuppressNegativeZero, test.ShouldBeTrue)
}

func TestReadErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Read(context.Background(), writeConfig(t, `{"chain": [{"name": "drone_T_imu"}], "extra": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "extra")

	_, err = Read(context.Background(), writeConfig(t, `{"chain": [{"name": "map_T_odom"}]}`), logger)
	test.That(t, errors.Is(err, referenceframe.ErrUnknownFrame), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FromReader(ctx, "", strings.NewReader(`{"chain": [{"name": "drone_T_imu"}]}`), logger)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestPrecision(t *testing.T) {
	logger := logging.NewTestLogger(t)

	cfg, err := Read(context.Background(), writeConfig(t, `{"chain": [{"name": "drone_T_imu"}]}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Precision, test.ShouldBeNil)
	test.That(t, cfg.FormatOptions().Precision, test.ShouldEqual, referenceframe.DefaultPrecision)

	cfg, err = Read(context.Background(), writeConfig(t, `{"chain": [{"name": "drone_T_nedcam"}], "precision": 0}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FormatOptions().Precision, test.ShouldEqual, 0)
	tf, err := cfg.Transform()
	test.That(t, err, test.ShouldBeNil)
	origin, err := referenceframe.NewOrigin(tf, spatialmath.ExtractTrigonometric, cfg.FormatOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, origin.String(), test.ShouldEqual, `<origin xyz="0 0 0" rpy="0 0 2" />`)

	cfg, err = Read(context.Background(), writeConfig(t, `{"chain": [{"name": "drone_T_imu"}], "precision": -1}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FormatOptions().Precision, test.ShouldEqual, -1)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Chain: []ChainEntry{
			{},
			{Name: "drone_T_imu", XYZ: []float64{0, 0, 1}},
			{XYZ: []float64{0, 0}},
			{Matrix: [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}}},
			{Name: "drone_T_imu", Degrees: true},
		},
		Extraction: "zyx",
		Precision:  lo.ToPtr(40),
		Joint:      &Joint{Name: "j", Parent: "base_link"},
		Plot:       &Plot{},
	}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	errs := multierr.Errors(err)
	test.That(t, errs, test.ShouldHaveLength, 9)
	test.That(t, errs[0].Error(), test.ShouldContainSubstring, `"chain.0"`)
	test.That(t, errs[2].Error(), test.ShouldContainSubstring, `"chain.2.xyz"`)
	test.That(t, errors.Is(errs[3], spatialmath.ErrImproperRotation), test.ShouldBeTrue)
	test.That(t, errors.Is(errs[5], spatialmath.ErrUnknownExtractionMethod), test.ShouldBeTrue)
	test.That(t, errs[7].Error(), test.ShouldContainSubstring, `"child" is required`)

	test.That(t, (&Config{}).Validate().Error(), test.ShouldContainSubstring, "at least one entry")
}

func TestChainEntryTransform(t *testing.T) {
	inv := ChainEntry{Name: referenceframe.BodyFromIMU, Invert: true}
	tf, err := inv.Transform()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Point().Z, test.ShouldAlmostEqual, -0.3)

	deg := ChainEntry{XYZ: []float64{1, 2, 3}, RPY: []float64{0, 0, 90}, Degrees: true}
	test.That(t, deg.Validate("chain.0"), test.ShouldBeNil)
	tf, err = deg.Transform()
	test.That(t, err, test.ShouldBeNil)
	res, err := tf.XYZRPY(spatialmath.ExtractAxisSequence)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Orientation.Yaw, test.ShouldAlmostEqual, 1.5707963267948966)
	test.That(t, res.Translation.Y, test.ShouldEqual, 2.)

	rotOnly := ChainEntry{RPY: []float64{0.1, 0, 0}}
	tf, err = rotOnly.Transform()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Point().Norm(), test.ShouldEqual, 0.)

	matrix := ChainEntry{Matrix: [][]float64{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}}}
	tf, err = matrix.Transform()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.AlmostEqual(referenceframe.ENUToNED(), 0), test.ShouldBeTrue)
}

func TestSchema(t *testing.T) {
	schema, err := Schema()
	test.That(t, err, test.ShouldBeNil)
	out := string(schema)
	test.That(t, out, test.ShouldContainSubstring, `"chain"`)
	test.That(t, out, test.ShouldContainSubstring, `"rpy"`)
	test.That(t, out, test.ShouldContainSubstring, "ChainEntry")
}
