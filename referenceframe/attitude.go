package referenceframe

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/framecalc/spatialmath"
)

// AttitudeChain selects which camera frame the measured angles are expressed in.
type AttitudeChain int

const (
	// ChainCVCamera treats the angles as a rotation of the CV camera: drone_R_imu·imu_R_cvcam·R_cam.
	ChainCVCamera AttitudeChain = iota
	// ChainNEDCamera treats the angles as a rotation of the NED style camera: drone_T_nedcam·T_cam.
	ChainNEDCamera
)

func (c AttitudeChain) String() string {
	switch c {
	case ChainCVCamera:
		return "cv"
	case ChainNEDCamera:
		return "ned"
	default:
		return "unknown"
	}
}

// ParseAttitudeChain parses "cv" or "ned". An empty string selects the CV chain.
func ParseAttitudeChain(s string) (AttitudeChain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cv", "cvcam":
		return ChainCVCamera, nil
	case "ned", "nedcam":
		return ChainNEDCamera, nil
	default:
		return 0, errors.Errorf("unknown attitude chain %q, expected cv or ned", s)
	}
}

// CameraAttitude is a camera roll and pitch in degrees. Yaw is taken as zero.
type CameraAttitude struct {
	Roll  float64
	Pitch float64
}

// AttitudeOptions controls CameraAttitudeToBody.
type AttitudeOptions struct {
	Chain AttitudeChain
	// ToNED re-expresses the body rotation in NED by pre-multiplying ned_R_enu.
	ToNED  bool
	Method spatial.ExtractionMethod
}

// BodyAttitude is the result of CameraAttitudeToBody. Angles are in degrees.
type BodyAttitude struct {
	Roll         float64
	Pitch        float64
	Yaw          float64
	GimbalLocked bool
	// Transform is the full camera-to-body transform the angles were read from.
	Transform *spatial.Transform
}

// cameraRotation is the rotation described by the camera's own roll and pitch.
func cameraRotation(att CameraAttitude) (*spatial.Transform, error) {
	for _, v := range []float64{att.Roll, att.Pitch} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrBadAttitude, "roll %v pitch %v", att.Roll, att.Pitch)
		}
	}
	rm := spatial.RotationFromEuler(spatial.SequenceRPY, [3]float64{att.Roll, att.Pitch, 0}, spatial.Degrees)
	return spatial.NewTransform(rm, r3.Vector{}), nil
}

func mountTransform(chain AttitudeChain) (*spatial.Transform, error) {
	switch chain {
	case ChainCVCamera:
		return CVCameraToBody(), nil
	case ChainNEDCamera:
		return NEDCameraToBody(), nil
	default:
		return nil, errors.Errorf("unknown attitude chain %d", int(chain))
	}
}

// CameraAttitudeToBody converts a camera roll and pitch into the vehicle body roll and pitch by
// carrying the camera rotation through the mounting chain.
func CameraAttitudeToBody(att CameraAttitude, opts AttitudeOptions) (BodyAttitude, error) {
	cam, err := cameraRotation(att)
	if err != nil {
		return BodyAttitude{}, err
	}
	mount, err := mountTransform(opts.Chain)
	if err != nil {
		return BodyAttitude{}, err
	}
	body := spatial.Compose(mount, cam)
	if opts.ToNED {
		body = spatial.Compose(ENUToNED(), body)
	}
	res, err := body.XYZRPY(opts.Method)
	if err != nil {
		return BodyAttitude{}, err
	}
	deg := res.Orientation.Degrees()
	return BodyAttitude{
		Roll:         deg[0],
		Pitch:        deg[1],
		Yaw:          deg[2],
		GimbalLocked: res.GimbalLocked,
		Transform:    body,
	}, nil
}

// LabeledTransform is a transform with a display name, as plotted by framevis.
type LabeledTransform struct {
	Label     string
	Transform *spatial.Transform
}

// AttitudeFrames returns the frames involved in CameraAttitudeToBody, all expressed in the body
// frame: the body itself, the mounted camera before the attitude is applied and after it.
// The NED chain also reports the CV camera rigidly attached to the rotated NED camera,
// drone_T_nedcam·T_cam·nedcam_T_cvcam.
func AttitudeFrames(att CameraAttitude, opts AttitudeOptions) ([]LabeledTransform, error) {
	cam, err := cameraRotation(att)
	if err != nil {
		return nil, err
	}
	mount, err := mountTransform(opts.Chain)
	if err != nil {
		return nil, err
	}
	rotated := spatial.Compose(mount, cam)
	frames := []LabeledTransform{
		{Label: "drone", Transform: spatial.NewIdentityTransform()},
		{Label: opts.Chain.String() + " cam", Transform: mount},
		{Label: opts.Chain.String() + " cam rotated", Transform: rotated},
	}
	if opts.Chain == ChainNEDCamera {
		frames = append(frames, LabeledTransform{
			Label:     "cv cam rotated",
			Transform: spatial.Compose(rotated, NEDCameraToCVCamera().Inverse()),
		})
	}
	return frames, nil
}
