// Package cli contains the framecalc command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/framecalc/referenceframe"
	"go.viam.com/framecalc/spatialmath"
)

const (
	debugFlag    = "debug"
	logLevelFlag = "log-level"

	transformFlagConfig    = "config"
	transformFlagChain     = "chain"
	transformFlagMethod    = "method"
	transformFlagPrecision = "precision"
	transformFlagInvert    = "invert"

	attitudeFlagRoll   = "roll"
	attitudeFlagPitch  = "pitch"
	attitudeFlagChain  = "chain"
	attitudeFlagNED    = "ned"
	attitudeFlagMethod = "method"
	attitudeFlagPlot   = "plot"

	plotFlagOutput = "output"
	plotFlagTitle  = "title"
	plotFlagScale  = "scale"
	plotFlagSteps  = "steps"
)

// transformSourceFlags select the transform an action works on.
func transformSourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    transformFlagConfig,
			Aliases: []string{"c"},
			Usage:   "JSON file describing the chain of transforms",
		},
		&cli.StringSliceFlag{
			Name:  transformFlagChain,
			Usage: "comma separated named transforms composed left to right, e.g. drone_T_imu,imu_T_cvcam",
		},
	}
}

func methodFlag(name string) cli.Flag {
	return &cli.StringFlag{
		Name:  name,
		Usage: "roll-pitch-yaw extraction method: " + spatialmath.ExtractAxisSequence.String() + " or " + spatialmath.ExtractTrigonometric.String(),
	}
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		methodFlag(transformFlagMethod),
		&cli.IntFlag{
			Name:  transformFlagPrecision,
			Usage: "decimals in the origin tag, -1 for the shortest exact form",
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// NewApp returns the framecalc command line app writing to the given streams.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "framecalc",
		Usage:           "compose coordinate frame transforms and print them as URDF origins",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "enable debug logging, overrides --log-level",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Value: "info",
				Usage: "log level: debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "origin",
				Usage:     "compose a chain and print its URDF origin",
				UsageText: "framecalc origin (--config <file> | --chain <name>,<name>...) [--method <method>] [--precision <n>]",
				Flags: flags(transformSourceFlags(), formatFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  transformFlagInvert,
						Usage: "print the origin of the inverse transform",
					},
				}),
				Action: OriginAction,
			},
			{
				Name:      "invert",
				Usage:     "print the inverse of a chain as a matrix and URDF origin",
				UsageText: "framecalc invert (--config <file> | --chain <name>,<name>...)",
				Flags:     flags(transformSourceFlags(), formatFlags()),
				Action:    InvertAction,
			},
			{
				Name:      "compare",
				Usage:     "extract roll-pitch-yaw of a chain with every method and compare them",
				UsageText: "framecalc compare (--config <file> | --chain <name>,<name>...)",
				Flags:     transformSourceFlags(),
				Action:    CompareAction,
			},
			{
				Name:      "attitude",
				Usage:     "convert a camera roll and pitch into vehicle body roll-pitch-yaw",
				UsageText: "framecalc attitude --roll <deg> --pitch <deg> [--chain cv|ned] [--ned] [--plot <file>]",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:     attitudeFlagRoll,
						Usage:    "camera roll in degrees",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     attitudeFlagPitch,
						Usage:    "camera pitch in degrees",
						Required: true,
					},
					&cli.StringFlag{
						Name:  attitudeFlagChain,
						Usage: "camera mounting chain, cv or ned",
						Value: referenceframe.ChainCVCamera.String(),
					},
					&cli.BoolFlag{
						Name:  attitudeFlagNED,
						Usage: "express the body attitude in NED rather than ENU",
					},
					methodFlag(attitudeFlagMethod),
					&cli.PathFlag{
						Name:  attitudeFlagPlot,
						Usage: "write a plot of the frames involved to this file",
					},
				},
				Action: AttitudeAction,
			},
			{
				Name:      "plot",
				Usage:     "plot the frames of a chain",
				UsageText: "framecalc plot (--config <file> | --chain <name>,<name>...) --output <file>",
				Flags: flags(transformSourceFlags(), []cli.Flag{
					&cli.PathFlag{
						Name:    plotFlagOutput,
						Aliases: []string{"o"},
						Usage:   "image file to write, .png .svg .pdf or .jpg",
					},
					&cli.StringFlag{
						Name:  plotFlagTitle,
						Usage: "plot title",
					},
					&cli.Float64Flag{
						Name:  plotFlagScale,
						Usage: "axis length multiplier",
					},
					&cli.BoolFlag{
						Name:  plotFlagSteps,
						Usage: "also draw the frame after each entry of the chain",
					},
				}),
				Action: PlotAction,
			},
			{
				Name:   "constants",
				Usage:  "list the named transforms",
				Action: ConstantsAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the chain config file",
				Action: SchemaAction,
			},
		},
	}
}
