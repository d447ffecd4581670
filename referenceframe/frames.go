// Package referenceframe holds the fixed frame relationships of the camera rig: a computer vision
// camera mounted through an IMU on the vehicle body, plus the NED/ENU/world conventions around it.
// It also turns transforms into URDF origin tags.
//
// Every transform is named a_T_b and maps coordinates in frame b into frame a.
package referenceframe

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	spatial "go.viam.com/framecalc/spatialmath"
)

// Names of the constant transforms.
const (
	IMUFromCVCamera       = "imu_T_cvcam"
	BodyFromIMU           = "drone_T_imu"
	CVCameraFromNEDCamera = "cvcam_T_nedcam"
	NEDFromENU            = "ned_T_enu"
	WorldFromCV           = "world_T_cv"
	BodyFromCVCamera      = "drone_T_cvcam"
	BodyFromNEDCamera     = "drone_T_nedcam"
)

// cos and sin of the 15 degree camera tilt, as measured on the rig.
const (
	tiltCos = 0.96592583
	tiltSin = 0.25881905
)

// NamedTransform is one entry of the constant table.
type NamedTransform struct {
	Name        string
	Description string
	Transform   func() *spatial.Transform
}

var namedTransforms = []NamedTransform{
	{IMUFromCVCamera, "CV camera (x right, y down, z forward) into the IMU frame", CVCameraToIMU},
	{BodyFromIMU, "IMU into the vehicle body, 0.3 up", IMUToBody},
	{CVCameraFromNEDCamera, "NED style camera (x forward, y right, z down) into the CV camera", NEDCameraToCVCamera},
	{NEDFromENU, "ENU (east, north, up) into NED (north, east, down)", ENUToNED},
	{WorldFromCV, "CV (y down, z forward) into an OpenGL world (y up, z back)", CVToWorld},
	{BodyFromCVCamera, "CV camera into the vehicle body", CVCameraToBody},
	{BodyFromNEDCamera, "NED style camera into the vehicle body", NEDCameraToBody},
}

// mustTransform builds one of the hand written constants. A literal failing validation is a
// programming error.
func mustTransform(rows [][]float64) *spatial.Transform {
	t, err := spatial.NewTransformFromRows(rows)
	if err != nil {
		panic(err)
	}
	return t
}

// CVCameraToIMU returns imu_T_cvcam: a half turn about z combined with the 15 degree downward tilt.
func CVCameraToIMU() *spatial.Transform {
	return mustTransform([][]float64{
		{-1, 0, 0, 0},
		{0, -tiltSin, tiltCos, 0},
		{0, tiltCos, tiltSin, 0},
		{0, 0, 0, 1},
	})
}

// IMUToBody returns drone_T_imu, a pure translation of 0.3 along z.
func IMUToBody() *spatial.Transform {
	return mustTransform([][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0.3},
		{0, 0, 0, 1},
	})
}

// NEDCameraToCVCamera returns cvcam_T_nedcam, the axis permutation between a forward-right-down
// camera and a right-down-forward one.
func NEDCameraToCVCamera() *spatial.Transform {
	return mustTransform([][]float64{
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 1},
	})
}

// ENUToNED returns ned_T_enu.
func ENUToNED() *spatial.Transform {
	return mustTransform([][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, -1},
	})
}

// CVToWorld returns world_T_cv.
func CVToWorld() *spatial.Transform {
	return mustTransform([][]float64{
		{1, 0, 0},
		{0, -1, 0},
		{0, 0, -1},
	})
}

// CVCameraToBody returns drone_T_cvcam = drone_T_imu·imu_T_cvcam.
func CVCameraToBody() *spatial.Transform {
	return spatial.Compose(IMUToBody(), CVCameraToIMU())
}

// NEDCameraToBody returns drone_T_nedcam = drone_T_cvcam·cvcam_T_nedcam.
func NEDCameraToBody() *spatial.Transform {
	return spatial.Compose(CVCameraToBody(), NEDCameraToCVCamera())
}

// NamedTransforms returns the constant table in declaration order.
func NamedTransforms() []NamedTransform {
	return append([]NamedTransform(nil), namedTransforms...)
}

// TransformNames returns the sorted names accepted by TransformByName, excluding inverses.
func TransformNames() []string {
	names := lo.Map(namedTransforms, func(nt NamedTransform, _ int) string { return nt.Name })
	sort.Strings(names)
	return names
}

// TransformByName looks up a constant. A name whose frames are swapped relative to a table entry,
// such as "cvcam_T_imu", returns the inverse of that entry.
func TransformByName(name string) (*spatial.Transform, error) {
	if nt, ok := lo.Find(namedTransforms, func(nt NamedTransform) bool { return nt.Name == name }); ok {
		return nt.Transform(), nil
	}
	if swapped, ok := swapFrames(name); ok {
		if nt, ok := lo.Find(namedTransforms, func(nt NamedTransform) bool { return nt.Name == swapped }); ok {
			return nt.Transform().Inverse(), nil
		}
	}
	return nil, NewUnknownFrameError(name)
}

// swapFrames turns "a_T_b" into "b_T_a".
func swapFrames(name string) (string, bool) {
	to, from, ok := strings.Cut(name, "_T_")
	if !ok || to == "" || from == "" {
		return "", false
	}
	return from + "_T_" + to, true
}
