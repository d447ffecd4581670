package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)} // in quaternion representation
	aa45x = &R4AA{th, 1., 0., 0.}                                         // in axis-angle representation
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}                      // in euler angle representation
	rm45x = RotationFromEuler(SequenceRPY, [3]float64{th, 0, 0}, Radians) // in rotation matrix representation
)

func TestIdentityOrientation(t *testing.T) {
	identity := NewIdentityRotation()
	test.That(t, identity.AxisAngles().Theta, test.ShouldEqual, 0.)
	test.That(t, identity.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	ea := identity.EulerAngles()
	test.That(t, ea.Roll, test.ShouldAlmostEqual, 0.)
	test.That(t, ea.Pitch, test.ShouldAlmostEqual, 0.)
	test.That(t, ea.Yaw, test.ShouldAlmostEqual, 0.)
	test.That(t, NewR4AA().RotationMatrix().AlmostEqual(identity, 0), test.ShouldBeTrue)
}

func checkAll45x(t *testing.T, o Orientation) {
	t.Helper()
	q := o.Quaternion()
	test.That(t, q.Real, test.ShouldAlmostEqual, q45x.Real)
	test.That(t, q.Imag, test.ShouldAlmostEqual, q45x.Imag)
	test.That(t, q.Jmag, test.ShouldAlmostEqual, q45x.Jmag)
	test.That(t, q.Kmag, test.ShouldAlmostEqual, q45x.Kmag)
	aa := o.AxisAngles()
	test.That(t, aa.Theta, test.ShouldAlmostEqual, aa45x.Theta)
	test.That(t, aa.RX, test.ShouldAlmostEqual, aa45x.RX)
	test.That(t, aa.RY, test.ShouldAlmostEqual, aa45x.RY)
	test.That(t, aa.RZ, test.ShouldAlmostEqual, aa45x.RZ)
	ea := o.EulerAngles()
	test.That(t, ea.Roll, test.ShouldAlmostEqual, ea45x.Roll)
	test.That(t, ea.Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
	test.That(t, ea.Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
	test.That(t, o.RotationMatrix().AlmostEqual(rm45x, 1e-9), test.ShouldBeTrue)
}

func TestQuaternions(t *testing.T) {
	qq45x := quaternion(q45x)
	checkAll45x(t, &qq45x)
}

func TestEulerAngles(t *testing.T) {
	checkAll45x(t, ea45x)
}

func TestAxisAngles(t *testing.T) {
	checkAll45x(t, aa45x)
}

func TestRotationMatrix(t *testing.T) {
	checkAll45x(t, rm45x)
}

func TestQuaternionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 100; i++ {
		rm := randomRotation(rng)
		back := QuatToRotationMatrix(rm.Quaternion())
		test.That(t, back.AlmostEqual(rm, 1e-12), test.ShouldBeTrue)
		test.That(t, quat.Abs(rm.Quaternion()), test.ShouldAlmostEqual, 1.)
	}
	// 180 degree turns exercise the diagonal branches of the conversion
	for _, angles := range [][3]float64{{math.Pi, 0, 0}, {0, math.Pi, 0}, {0, 0, math.Pi}} {
		rm := RotationFromEuler(SequenceRPY, angles, Radians)
		test.That(t, QuatToRotationMatrix(rm.Quaternion()).AlmostEqual(rm, 1e-12), test.ShouldBeTrue)
	}
}

func TestOrientationBetween(t *testing.T) {
	aa := &R4AA{Theta: math.Pi / 2., RX: 0., RY: 1., RZ: 0.}
	btw := OrientationBetween(aa, aa).AxisAngles()
	test.That(t, btw.Theta, test.ShouldAlmostEqual, 0.)

	rz30 := RotationFromEuler(SequenceRPY, [3]float64{0, 0, 30}, Degrees)
	rz75 := RotationFromEuler(SequenceRPY, [3]float64{0, 0, 75}, Degrees)
	between := OrientationBetween(rz30, rz75).AxisAngles()
	test.That(t, between.Theta, test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, between.RZ, test.ShouldAlmostEqual, 1.)
	test.That(t, AngleBetween(rz75, rz30), test.ShouldAlmostEqual, math.Pi/4)

	test.That(t, OrientationAlmostEqual(ea45x, aa45x), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(ea45x, rz30), test.ShouldBeFalse)

	// q and -q are the same orientation
	neg := quaternion(quat.Scale(-1, q45x))
	test.That(t, OrientationAlmostEqual(&neg, ea45x), test.ShouldBeTrue)
	test.That(t, quat.Number(neg).Real, test.ShouldAlmostEqual, -q45x.Real)
}
