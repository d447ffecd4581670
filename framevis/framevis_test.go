package framevis

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/plot/vg"

	"go.viam.com/framecalc/spatialmath"
)

func TestProject(t *testing.T) {
	view := DefaultView()
	// z is straight up the screen whatever the azimuth
	up := view.Project(r3.Vector{Z: 1})
	test.That(t, up.X, test.ShouldAlmostEqual, 0.)
	test.That(t, up.Y, test.ShouldAlmostEqual, 0.8660254037844387)

	top := View{Azimuth: -90, Elevation: 90}
	x := top.Project(r3.Vector{X: 1})
	test.That(t, x.X, test.ShouldAlmostEqual, 1.)
	test.That(t, x.Y, test.ShouldAlmostEqual, 0.)
	y := top.Project(r3.Vector{Y: 1})
	test.That(t, y.X, test.ShouldAlmostEqual, 0.)
	test.That(t, y.Y, test.ShouldAlmostEqual, 1.)
}

func TestNewPlotErrors(t *testing.T) {
	_, err := NewPlot("empty", DefaultView())
	test.That(t, errors.Is(err, ErrNoFrames), test.ShouldBeTrue)

	_, err = NewPlot("nil", DefaultView(), Frame{Label: "broken"})
	test.That(t, err, test.ShouldBeError)
	test.That(t, err.Error(), test.ShouldContainSubstring, "broken")
}

func TestSavePlot(t *testing.T) {
	tf, err := spatialmath.NewTransformFromRows([][]float64{
		{0, -1, 0, 0.5},
		{0, 0, 1, 0.5},
		{-1, 0, 0, 0.5},
		{0, 0, 0, 1},
	})
	test.That(t, err, test.ShouldBeNil)
	colors := AutoColors(1)
	p, err := NewPlot("target_T_source", DefaultView(),
		Frame{Transform: spatialmath.NewIdentityTransform(), Label: "ref", Scale: 4},
		Frame{Transform: tf, Label: "target_T_source", Scale: 4, Color: colors[0]},
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.X.Max-p.X.Min, test.ShouldAlmostEqual, p.Y.Max-p.Y.Min)

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "frames.png")
	test.That(t, Save(p, pngPath, 3*vg.Inch), test.ShouldBeNil)
	data, err := os.ReadFile(pngPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bytes.HasPrefix(data, []byte("\x89PNG")), test.ShouldBeTrue)

	svgPath := filepath.Join(dir, "frames.svg")
	test.That(t, Save(p, svgPath, 0), test.ShouldBeNil)
	data, err = os.ReadFile(svgPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "<svg")

	err = Save(p, filepath.Join(dir, "frames.gif"), 0)
	test.That(t, errors.Is(err, ErrUnsupportedFormat), test.ShouldBeTrue)
}

func TestAutoColors(t *testing.T) {
	test.That(t, AutoColors(0), test.ShouldBeEmpty)
	colors := AutoColors(5)
	test.That(t, colors, test.ShouldHaveLength, 5)
	for i := range colors {
		ci, ok := colorful.MakeColor(colors[i])
		test.That(t, ok, test.ShouldBeTrue)
		for j := i + 1; j < len(colors); j++ {
			cj, _ := colorful.MakeColor(colors[j])
			test.That(t, ci.DistanceLab(cj), test.ShouldBeGreaterThan, 0.1)
		}
	}
}
