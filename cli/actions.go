package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/framecalc/config"
	"go.viam.com/framecalc/framevis"
	"go.viam.com/framecalc/logging"
	"go.viam.com/framecalc/referenceframe"
	"go.viam.com/framecalc/spatialmath"
	"go.viam.com/framecalc/utils"
)

const gimbalLockWarning = "pitch is at ±90 degrees, yaw is fixed at 0 and folded into roll"

// newLogger logs to the app's error stream so results on the output stream stay parseable.
// --debug wins over --log-level.
func newLogger(c *cli.Context) (logging.Logger, error) {
	level, err := logging.LevelFromString(c.String(logLevelFlag))
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", logLevelFlag)
	}
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	return logging.NewWriterLogger("framecalc", c.App.ErrWriter, level), nil
}

// loadConfig builds the chain from --config or --chain and applies any formatting flags on top.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	path := c.Path(transformFlagConfig)
	names := c.StringSlice(transformFlagChain)

	var cfg *config.Config
	switch {
	case path != "" && len(names) > 0:
		return nil, errors.Errorf("only one of --%s or --%s may be given", transformFlagConfig, transformFlagChain)
	case path != "":
		var err error
		cfg, err = config.Read(c.Context, path, logger)
		if err != nil {
			return nil, err
		}
	case len(names) > 0:
		cfg = &config.Config{
			Chain: lo.Map(names, func(name string, _ int) config.ChainEntry {
				return config.ChainEntry{Name: strings.TrimSpace(name)}
			}),
		}
	default:
		return nil, errors.Errorf("one of --%s or --%s is required", transformFlagConfig, transformFlagChain)
	}

	if c.IsSet(transformFlagMethod) {
		cfg.Extraction = c.String(transformFlagMethod)
	}
	if c.IsSet(transformFlagPrecision) {
		cfg.Precision = lo.ToPtr(c.Int(transformFlagPrecision))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func composeAndExtract(
	c *cli.Context,
	logger logging.Logger,
	invert bool,
) (*config.Config, *spatialmath.Transform, spatialmath.XYZRPY, error) {
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return nil, nil, spatialmath.XYZRPY{}, err
	}
	tf, err := cfg.Transform()
	if err != nil {
		return nil, nil, spatialmath.XYZRPY{}, err
	}
	if invert {
		tf = tf.Inverse()
	}
	method, err := cfg.ExtractionMethod()
	if err != nil {
		return nil, nil, spatialmath.XYZRPY{}, err
	}
	res, err := tf.XYZRPY(method)
	if err != nil {
		return nil, nil, spatialmath.XYZRPY{}, err
	}
	logger.Debugw("composed chain",
		"entries", len(cfg.Chain),
		"inverted", invert,
		"method", method.String(),
		"orthonormality_error", tf.OrthonormalityError(),
	)
	if res.GimbalLocked {
		warningf(c.App.ErrWriter, gimbalLockWarning)
	}
	return cfg, tf, res, nil
}

// printOrigin prints the origin tag, wrapped in the configured joint if any. An inverted chain
// is child_T_parent, so its joint runs from the configured child to the configured parent.
func printOrigin(c *cli.Context, cfg *config.Config, res spatialmath.XYZRPY, inverted bool) {
	origin := referenceframe.NewOriginFromXYZRPY(res, cfg.FormatOptions())
	if cfg.Joint != nil {
		parent, child := cfg.Joint.Parent, cfg.Joint.Child
		if inverted {
			parent, child = child, parent
		}
		printf(c.App.Writer, "%s", referenceframe.NewFixedJoint(cfg.Joint.Name, parent, child, origin))
		return
	}
	printf(c.App.Writer, "%s", origin)
}

// OriginAction composes a chain and prints its URDF origin, or a fixed joint if the config names one.
func OriginAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	invert := c.Bool(transformFlagInvert)
	cfg, _, res, err := composeAndExtract(c, logger, invert)
	if err != nil {
		return err
	}
	printOrigin(c, cfg, res, invert)
	return nil
}

// InvertAction prints the inverse of a chain as a matrix followed by its URDF origin.
func InvertAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, inv, res, err := composeAndExtract(c, logger, true)
	if err != nil {
		return err
	}
	tw := table.NewWriter()
	for _, row := range inv.Rows() {
		tw.AppendRow(lo.Map(row, func(v float64, _ int) interface{} { return fmt.Sprintf("%.6f", v) }))
	}
	printf(c.App.Writer, "%s", tw.Render())
	printOrigin(c, cfg, res, true)
	return nil
}

// CompareAction extracts roll-pitch-yaw with every method and reports how far apart the rotations
// they describe are.
func CompareAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	tf, err := cfg.Transform()
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Method", "Roll (deg)", "Pitch (deg)", "Yaw (deg)", "Max angle diff (deg)", "Gimbal lock", "Origin"})
	results := make([]spatialmath.XYZRPY, 0, len(spatialmath.ExtractionMethods))
	locked := false
	var first [3]float64
	for i, method := range spatialmath.ExtractionMethods {
		res, err := tf.XYZRPY(method)
		if err != nil {
			return err
		}
		results = append(results, res)
		locked = locked || res.GimbalLocked
		deg := res.Orientation.Degrees()
		if i == 0 {
			first = deg
		}
		// per angle, against the first method; equal rotations can still differ here
		var angleDiff float64
		for axis := range deg {
			angleDiff = max(angleDiff, utils.AngleDiffDeg(deg[axis], first[axis]))
		}
		origin := referenceframe.NewOriginFromXYZRPY(res, cfg.FormatOptions())
		tw.AppendRow(table.Row{
			method.String(),
			fmt.Sprintf("%.6f", deg[0]),
			fmt.Sprintf("%.6f", deg[1]),
			fmt.Sprintf("%.6f", deg[2]),
			fmt.Sprintf("%.6f", angleDiff),
			res.GimbalLocked,
			origin.RPY,
		})
	}
	printf(c.App.Writer, "%s", tw.Render())

	var worst float64
	for _, res := range results[1:] {
		diff := spatialmath.AngleBetween(&results[0].Orientation, &res.Orientation)
		worst = max(worst, diff)
	}
	logger.Debugw("compared extraction methods", "max_divergence_rad", worst)
	if locked {
		warningf(c.App.ErrWriter, gimbalLockWarning)
	}
	infof(c.App.Writer, "methods describe rotations %.3g degrees apart", utils.RadToDeg(worst))
	return nil
}

// AttitudeAction converts a camera roll and pitch into the vehicle body's roll, pitch and yaw.
func AttitudeAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	chain, err := referenceframe.ParseAttitudeChain(c.String(attitudeFlagChain))
	if err != nil {
		return err
	}
	method, err := spatialmath.ParseExtractionMethod(c.String(attitudeFlagMethod))
	if err != nil {
		return err
	}
	att := referenceframe.CameraAttitude{Roll: c.Float64(attitudeFlagRoll), Pitch: c.Float64(attitudeFlagPitch)}
	opts := referenceframe.AttitudeOptions{Chain: chain, ToNED: c.Bool(attitudeFlagNED), Method: method}

	body, err := referenceframe.CameraAttitudeToBody(att, opts)
	if err != nil {
		return err
	}
	logger.Debugw("converted camera attitude", "chain", chain.String(), "ned", opts.ToNED, "method", method.String())

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Frame", "Roll (deg)", "Pitch (deg)", "Yaw (deg)"})
	tw.AppendRow(table.Row{chain.String() + " cam", fmt.Sprintf("%.6f", att.Roll), fmt.Sprintf("%.6f", att.Pitch), fmt.Sprintf("%.6f", 0.)})
	tw.AppendRow(table.Row{"drone", fmt.Sprintf("%.6f", body.Roll), fmt.Sprintf("%.6f", body.Pitch), fmt.Sprintf("%.6f", body.Yaw)})
	printf(c.App.Writer, "%s", tw.Render())
	if body.GimbalLocked {
		warningf(c.App.ErrWriter, gimbalLockWarning)
	}

	out := c.Path(attitudeFlagPlot)
	if out == "" {
		return nil
	}
	labeled, err := referenceframe.AttitudeFrames(att, opts)
	if err != nil {
		return err
	}
	colors := framevis.AutoColors(len(labeled))
	frames := make([]framevis.Frame, 0, len(labeled))
	for i, lt := range labeled {
		f := framevis.Frame{Transform: lt.Transform, Label: lt.Label}
		if i > 0 && i < len(labeled)-1 {
			f.Color = colors[i]
		}
		frames = append(frames, f)
	}
	title := fmt.Sprintf("camera roll %g pitch %g", att.Roll, att.Pitch)
	if err := savePlot(title, frames, out); err != nil {
		return err
	}
	infof(c.App.Writer, "wrote %s", out)
	return nil
}

// PlotAction draws the reference frame and the composed chain. With --steps every partial
// composition is drawn too.
func PlotAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}

	var settings config.Plot
	if cfg.Plot != nil {
		settings = *cfg.Plot
	}
	if c.IsSet(plotFlagOutput) {
		settings.Output = c.Path(plotFlagOutput)
	}
	if c.IsSet(plotFlagTitle) {
		settings.Title = c.String(plotFlagTitle)
	}
	if c.IsSet(plotFlagScale) {
		settings.Scale = c.Float64(plotFlagScale)
	}
	if err := settings.Validate("plot"); err != nil {
		return errors.Wrapf(err, "set --%s or plot.output in the config", plotFlagOutput)
	}

	labels := make([]string, 0, len(cfg.Chain))
	partial := spatialmath.NewIdentityTransform()
	steps := make([]framevis.Frame, 0, len(cfg.Chain))
	for idx := range cfg.Chain {
		entry := &cfg.Chain[idx]
		tf, err := entry.Transform()
		if err != nil {
			return errors.Wrapf(err, "chain entry %d", idx)
		}
		partial = spatialmath.Compose(partial, tf)
		label := entry.Name
		if label == "" {
			label = fmt.Sprintf("entry %d", idx)
		}
		if entry.Invert {
			label += "⁻¹"
		}
		labels = append(labels, label)
		steps = append(steps, framevis.Frame{Transform: partial, Label: label, Scale: settings.Scale})
	}

	frames := []framevis.Frame{{Transform: spatialmath.NewIdentityTransform(), Label: "ref", Scale: settings.Scale}}
	if c.Bool(plotFlagSteps) {
		colors := framevis.AutoColors(len(steps))
		for i := range steps[:len(steps)-1] {
			steps[i].Color = colors[i]
			frames = append(frames, steps[i])
		}
	}
	final := steps[len(steps)-1]
	final.Label = "target"
	frames = append(frames, final)

	title := settings.Title
	if title == "" {
		title = strings.Join(labels, " · ")
	}
	logger.Debugw("plotting chain", "frames", len(frames), "output", settings.Output)
	if err := savePlot(title, frames, settings.Output); err != nil {
		return err
	}
	infof(c.App.Writer, "wrote %s", settings.Output)
	return nil
}

func savePlot(title string, frames []framevis.Frame, out string) error {
	p, err := framevis.NewPlot(title, framevis.DefaultView(), frames...)
	if err != nil {
		return err
	}
	return framevis.Save(p, out, 0)
}

// ConstantsAction lists the named transforms with their translation and rotation.
func ConstantsAction(c *cli.Context) error {
	opts := referenceframe.FormatOptions{Precision: 4, SuppressNegativeZero: true}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Name", "XYZ", "RPY (rad)", "Description"})
	for _, nt := range referenceframe.NamedTransforms() {
		res, err := nt.Transform().XYZRPY(spatialmath.ExtractAxisSequence)
		if err != nil {
			return errors.Wrap(err, nt.Name)
		}
		origin := referenceframe.NewOriginFromXYZRPY(res, opts)
		tw.AppendRow(table.Row{nt.Name, origin.XYZ, origin.RPY, nt.Description})
	}
	printf(c.App.Writer, "%s", tw.Render())
	return nil
}

// SchemaAction prints the JSON schema of the chain config file.
func SchemaAction(c *cli.Context) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}
