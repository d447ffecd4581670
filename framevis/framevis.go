// Package framevis draws coordinate frames, each as three axis arrows starting at the frame origin,
// with an orthographic 3D projection onto a gonum plot.
package framevis

import (
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/framecalc/spatialmath"
)

// AxisLength is the drawn length of each axis at scale 1.
const AxisLength = 0.2

var (
	// ErrNoFrames is returned when a plot is requested without frames.
	ErrNoFrames = errors.New("nothing to plot")
	// ErrUnsupportedFormat is returned by Save for an unknown file extension.
	ErrUnsupportedFormat = errors.New("unsupported plot format")

	axisColors = [3]color.Color{
		color.RGBA{R: 220, A: 255},
		color.RGBA{G: 160, A: 255},
		color.RGBA{B: 220, A: 255},
	}
	axisNames = [3]string{"X", "Y", "Z"}
)

// Frame is a transform to draw. A nil Color draws the axes red, green and blue; otherwise all three
// axes use Color. A zero Scale is treated as 1.
type Frame struct {
	Transform *spatialmath.Transform
	Label     string
	Color     color.Color
	Scale     float64
}

// View is the camera for the orthographic projection, in degrees.
type View struct {
	Azimuth   float64
	Elevation float64
}

// DefaultView looks at the origin from azimuth -60 and elevation 30 degrees.
func DefaultView() View {
	return View{Azimuth: -60, Elevation: 30}
}

// Project maps a 3D point onto the screen plane.
func (v View) Project(p r3.Vector) plotter.XY {
	az := v.Azimuth * math.Pi / 180
	el := v.Elevation * math.Pi / 180
	right := r3.Vector{X: -math.Sin(az), Y: math.Cos(az)}
	up := r3.Vector{X: -math.Sin(el) * math.Cos(az), Y: -math.Sin(el) * math.Sin(az), Z: math.Cos(el)}
	return plotter.XY{X: p.Dot(right), Y: p.Dot(up)}
}

// NewPlot draws every frame into a new plot. The data axes are hidden since they carry screen
// coordinates, and the ranges are squared so the projection is not distorted.
func NewPlot(title string, view View, frames ...Frame) (*plot.Plot, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Legend.Top = true
	p.Legend.Left = false

	var bounds plotter.XYs
	for i, f := range frames {
		if f.Transform == nil {
			return nil, errors.Errorf("frame %d (%q) has no transform", i, f.Label)
		}
		pts, err := addFrame(p, view, f)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %q", f.Label)
		}
		bounds = append(bounds, pts...)
	}
	squareRanges(p, bounds)
	return p, nil
}

// addFrame draws one frame and returns the screen points it covers.
func addFrame(p *plot.Plot, view View, f Frame) (plotter.XYs, error) {
	scale := f.Scale
	if scale == 0 {
		scale = 1
	}
	axes := f.Transform.Axes()
	origin := view.Project(axes.Origin)
	pts := plotter.XYs{origin}

	tips := make(plotter.XYs, 3)
	tipColors := make([]color.Color, 3)
	for i, dir := range []r3.Vector{axes.X, axes.Y, axes.Z} {
		c := f.Color
		if c == nil {
			c = axisColors[i]
		}
		tips[i] = view.Project(axes.Origin.Add(dir.Mul(AxisLength * scale)))
		tipColors[i] = c

		line, err := plotter.NewLine(plotter.XYs{origin, tips[i]})
		if err != nil {
			return nil, err
		}
		line.Color = c
		line.Width = vg.Points(2)
		p.Add(line)
		if i == 0 && f.Color != nil && f.Label != "" {
			p.Legend.Add(f.Label, line)
		}
	}
	pts = append(pts, tips...)

	heads, err := plotter.NewScatter(tips)
	if err != nil {
		return nil, err
	}
	heads.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: tipColors[i], Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
	}
	p.Add(heads)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: tips, Labels: axisNames[:]})
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].Color = tipColors[i]
	}
	names.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(3)}
	p.Add(names)

	if f.Label != "" {
		label, err := plotter.NewLabels(plotter.XYLabels{XYs: plotter.XYs{origin}, Labels: []string{f.Label}})
		if err != nil {
			return nil, err
		}
		label.Offset = vg.Point{X: vg.Points(-4), Y: vg.Points(-10)}
		p.Add(label)
	}
	return pts, nil
}

func squareRanges(p *plot.Plot, pts plotter.XYs) {
	xmin, xmax, ymin, ymax := plotter.XYRange(pts)
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
	half := math.Max(xmax-xmin, ymax-ymin)/2*1.15 + 0.05
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}

// Save writes the plot as a square image. The format follows the file extension.
func Save(p *plot.Plot, path string, size vg.Length) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg":
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", path)
	}
	if size <= 0 {
		size = 6 * vg.Inch
	}
	return errors.Wrapf(p.Save(size, size, path), "saving plot to %s", path)
}

// AutoColors returns n colors evenly spaced in hue with constant chroma and lightness.
func AutoColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = colorful.Hcl(float64(i)*360/float64(n), 0.6, 0.55).Clamped()
	}
	return colors
}
