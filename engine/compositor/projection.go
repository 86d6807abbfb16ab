package compositor

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/go-gl/mathgl/mgl64"
)

// Eye selects the view drawn: the centre (mono) view or one eye of a stereo pair. Its value is
// the sign of the eye's offset along the camera's right vector.
type Eye int

const (
	EyeLeft   Eye = -1
	EyeCentre Eye = 0
	EyeRight  Eye = 1
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	}
	return "centre"
}

// stereoNearShrink pulls the near plane in for stereo so that negative-parallax geometry in
// front of the focal plane is not clipped.
const stereoNearShrink = 0.25

// ClipPlanes derives the near and far clip distances from the scene size.
//
// Parameters:
//   - diagonal: the scene bounding-box diagonal
//   - focal: the camera focal length
//   - stereo: whether the mode renders separate eyes
//   - expand: the near/far expansion factor; near is divided and far multiplied by it
//
// Returns:
//   - float64: the near distance
//   - float64: the far distance
func ClipPlanes(diagonal, focal float64, stereo bool, expand float64) (float64, float64) {
	if expand <= 0 {
		expand = 1
	}
	near := diagonal / 10
	if stereo {
		near *= stereoNearShrink
	}
	far := math.Max(focal, diagonal) * 20
	return near / expand, far * expand
}

// Frustum holds the clip volume bounds a projection matrix is built from. For perspective
// frusta the side bounds are measured on the near plane.
type Frustum struct {
	Left, Right, Bottom, Top float64
	Near, Far                float64
	Ortho                    bool
}

// Matrix returns the projection matrix of the frustum.
func (f Frustum) Matrix() mgl64.Mat4 {
	if f.Ortho {
		return mgl64.Ortho(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
	}
	return mgl64.Frustum(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}

// Shear returns the horizontal offset of the frustum centre, negated. It is positive for the
// right eye of an off-axis stereo pair.
func (f Frustum) Shear() float64 {
	return -(f.Left + f.Right) / 2
}

// EyeParams are the inputs of EyeFrustum.
type EyeParams struct {
	Pose       camera.Pose
	Projection camera.ProjectionMode
	Aspect     float64
	Near       float64
	Far        float64
	Eye        Eye
}

// EyeFrustum builds the off-axis frustum of one eye. Perspective frusta are sheared by
// ±0.5·eyeSep·near/focal; orthographic bounds follow the distance to the pivot and are
// not sheared.
//
// Parameters:
//   - p: the camera pose, projection, aspect ratio, clip planes and eye
//
// Returns:
//   - Frustum: the eye's clip volume
func EyeFrustum(p EyeParams) Frustum {
	half := mgl64.DegToRad(p.Pose.Aperture) / 2
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	if p.Projection == camera.Orthographic {
		h := p.Pose.PR.Sub(p.Pose.VP).Len() * math.Tan(half)
		if h <= 0 {
			h = p.Near * math.Tan(half)
		}
		return Frustum{Left: -aspect * h, Right: aspect * h, Bottom: -h, Top: h, Near: p.Near, Far: p.Far, Ortho: true}
	}

	wd2 := p.Near * math.Tan(half)
	shear := 0.0
	if p.Eye != EyeCentre && p.Pose.Focal > 0 {
		shear = float64(p.Eye) * 0.5 * p.Pose.EyeSep * p.Near / p.Pose.Focal
	}
	return Frustum{
		Left:   -aspect*wd2 - shear,
		Right:  aspect*wd2 - shear,
		Bottom: -wd2,
		Top:    wd2,
		Near:   p.Near,
		Far:    p.Far,
	}
}

// EyePosition returns the eye's position: the view point offset by half the eye separation
// along the right vector.
func EyePosition(pose camera.Pose, eye Eye) mgl64.Vec3 {
	return pose.VP.Add(pose.Right().Mul(float64(eye) * pose.EyeSep / 2))
}

// EyeView returns the view matrix of one eye. Both eyes look along the same direction.
func EyeView(pose camera.Pose, eye Eye) mgl64.Mat4 {
	pos := EyePosition(pose, eye)
	return mgl64.LookAtV(pos, pos.Add(pose.VD), pose.VU)
}

// BuildEye returns the projection and view matrices of one eye.
//
// Parameters:
//   - p: the camera pose, projection, aspect ratio, clip planes and eye
//
// Returns:
//   - mgl64.Mat4: the projection matrix
//   - mgl64.Mat4: the view matrix
func BuildEye(p EyeParams) (mgl64.Mat4, mgl64.Mat4) {
	return EyeFrustum(p).Matrix(), EyeView(p.Pose, p.Eye)
}
