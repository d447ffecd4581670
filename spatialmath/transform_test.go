package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func randomRotation(rng *rand.Rand) *RotationMatrix {
	return QuatToRotationMatrix(quat.Number{
		Real: rng.NormFloat64(),
		Imag: rng.NormFloat64(),
		Jmag: rng.NormFloat64(),
		Kmag: rng.NormFloat64(),
	})
}

func randomTransform(rng *rand.Rand) *Transform {
	p := r3.Vector{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2, Z: rng.Float64()*4 - 2}
	return NewTransform(randomRotation(rng), p)
}

func TestNewTransformFromRows(t *testing.T) {
	t.Run("4x4", func(t *testing.T) {
		tf, err := NewTransformFromRows([][]float64{
			{0, -1, 0, 0.5},
			{0, 0, 1, 0.5},
			{-1, 0, 0, 0.5},
			{0, 0, 0, 1},
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tf.Point(), test.ShouldResemble, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
		test.That(t, tf.At(2, 0), test.ShouldEqual, -1.)
		test.That(t, tf.Rows()[3], test.ShouldResemble, []float64{0, 0, 0, 1})
	})

	t.Run("3x3 is normalized to homogeneous form", func(t *testing.T) {
		tf, err := NewTransformFromRows([][]float64{
			{0, 1, 0},
			{1, 0, 0},
			{0, 0, -1},
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tf.Point(), test.ShouldResemble, r3.Vector{})
		test.That(t, tf.Rows(), test.ShouldResemble, [][]float64{
			{0, 1, 0, 0},
			{1, 0, 0, 0},
			{0, 0, -1, 0},
			{0, 0, 0, 1},
		})
	})

	t.Run("not orthonormal", func(t *testing.T) {
		_, err := NewTransformFromRows([][]float64{
			{1, 0.1, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 0, 1},
		})
		test.That(t, errors.Is(err, ErrNotOrthonormal), test.ShouldBeTrue)
		var malformed *MalformedTransformError
		test.That(t, errors.As(err, &malformed), test.ShouldBeTrue)
		test.That(t, malformed.Error(), test.ShouldContainSubstring, "malformed transform")
	})

	t.Run("reflection", func(t *testing.T) {
		_, err := NewTransformFromRows([][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, -1},
		})
		test.That(t, errors.Is(err, ErrImproperRotation), test.ShouldBeTrue)
	})

	t.Run("bad bottom row", func(t *testing.T) {
		_, err := NewTransformFromRows([][]float64{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 1, 1},
		})
		test.That(t, errors.Is(err, ErrBadBottomRow), test.ShouldBeTrue)
	})

	t.Run("bad shape", func(t *testing.T) {
		_, err := NewTransformFromRows([][]float64{{1, 0}, {0, 1}})
		test.That(t, errors.Is(err, ErrBadShape), test.ShouldBeTrue)
		_, err = NewTransformFromRows([][]float64{
			{1, 0, 0, 0},
			{0, 1, 0},
			{0, 0, 1, 0},
			{0, 0, 0, 1},
		})
		test.That(t, errors.Is(err, ErrBadShape), test.ShouldBeTrue)
	})

	t.Run("NaN", func(t *testing.T) {
		_, err := NewTransformFromRows([][]float64{
			{math.NaN(), 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		})
		test.That(t, errors.Is(err, ErrNotOrthonormal), test.ShouldBeTrue)
	})
}

func TestInvert(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	identity := NewIdentityTransform()
	for i := 0; i < 100; i++ {
		tf := randomTransform(rng)
		test.That(t, Invert(Invert(tf)).AlmostEqual(tf, 1e-9), test.ShouldBeTrue)
		test.That(t, Compose(tf, Invert(tf)).AlmostEqual(identity, 1e-9), test.ShouldBeTrue)
		test.That(t, Compose(tf.Inverse(), tf).AlmostEqual(identity, 1e-9), test.ShouldBeTrue)
	}

	tf := NewTransform(RotationFromEuler(SequenceRPY, [3]float64{0, 0, 90}, Degrees), r3.Vector{X: 1})
	inv := tf.Inverse()
	// -Rᵀ·p with p on +x and R a quarter turn about z
	test.That(t, inv.Point().X, test.ShouldAlmostEqual, 0.)
	test.That(t, inv.Point().Y, test.ShouldAlmostEqual, 1.)
	test.That(t, inv.Point().Z, test.ShouldAlmostEqual, 0.)
}

func TestComposeAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a, b, c := randomTransform(rng), randomTransform(rng), randomTransform(rng)
		left := Compose(Compose(a, b), c)
		right := Compose(a, Compose(b, c))
		test.That(t, left.AlmostEqual(right, 1e-9), test.ShouldBeTrue)
		test.That(t, ComposeChain(a, b, c).AlmostEqual(left, 1e-9), test.ShouldBeTrue)
	}
}

func TestComposeOrder(t *testing.T) {
	// a_T_b·b_T_c: b_T_c is applied first
	bTc := NewTranslation(r3.Vector{X: 1})
	aTb := NewTransform(RotationFromEuler(SequenceRPY, [3]float64{0, 0, 90}, Degrees), r3.Vector{})
	p := Compose(aTb, bTc).TransformPoint(r3.Vector{})
	test.That(t, p.X, test.ShouldAlmostEqual, 0.)
	test.That(t, p.Y, test.ShouldAlmostEqual, 1.)

	test.That(t, ComposeChain().AlmostEqual(NewIdentityTransform(), 0), test.ShouldBeTrue)
}

func TestQuarterTurnsReturnToIdentity(t *testing.T) {
	rz90 := NewTransform(RotationFromEuler(SequenceRPY, [3]float64{0, 0, math.Pi / 2}, Radians), r3.Vector{})
	full := ComposeChain(rz90, rz90, rz90, rz90)
	test.That(t, full.AlmostEqual(NewIdentityTransform(), 1e-9), test.ShouldBeTrue)
	test.That(t, full.Rotation().AlmostEqual(NewIdentityRotation(), 1e-9), test.ShouldBeTrue)
}

func TestRenormalize(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tf := NewIdentityTransform()
	for i := 0; i < 5000; i++ {
		tf = Compose(tf, randomTransform(rng))
	}
	fixed := tf.Renormalize()
	test.That(t, fixed.OrthonormalityError(), test.ShouldBeLessThan, 1e-12)
	test.That(t, fixed.Point(), test.ShouldResemble, tf.Point())

	_, err := NewTransformFromRows(fixed.Rows())
	test.That(t, err, test.ShouldBeNil)
}

func TestAxes(t *testing.T) {
	tf, err := NewTransformFromRows([][]float64{
		{0, 1, 0, 1},
		{0, 0, 1, 2},
		{1, 0, 0, 3},
		{0, 0, 0, 1},
	})
	test.That(t, err, test.ShouldBeNil)
	axes := tf.Axes()
	test.That(t, axes.Origin, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, axes.X, test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, axes.Y, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, axes.Z, test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, tf.String(), test.ShouldContainSubstring, "+1.000000")
}
