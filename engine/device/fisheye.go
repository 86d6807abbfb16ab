package device

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
)

// Face is one cube face of the fisheye composition.
type Face int

const (
	FaceFront Face = iota
	FaceLeft
	FaceRight
	FaceUp
	FaceDown
)

func (f Face) String() string {
	return [...]string{"front", "left", "right", "up", "down"}[f]
}

// faceCell is each face's cell in the 3×3 cross, column then row from the bottom-left.
var faceCell = [...][2]int{
	FaceFront: {1, 1},
	FaceLeft:  {0, 1},
	FaceRight: {2, 1},
	FaceUp:    {1, 2},
	FaceDown:  {1, 0},
}

// fisheye renders five 90° cube faces around the view direction, laid out as a cross, for
// a dome-master warp applied downstream.
type fisheye struct{}

var _ Driver = &fisheye{}

func (d *fisheye) Prepare(Options) error { return nil }

// FacePose turns a pose to look through one cube face with a 90° aperture.
//
// Parameters:
//   - p: the camera pose
//   - face: the face
//
// Returns:
//   - camera.Pose: the face pose
func FacePose(p camera.Pose, face Face) camera.Pose {
	right := p.Right()
	switch face {
	case FaceLeft:
		p.VD = right.Mul(-1)
	case FaceRight:
		p.VD = right
	case FaceUp:
		p.VD, p.VU = p.VU, p.VD.Mul(-1)
	case FaceDown:
		p.VD, p.VU = p.VU.Mul(-1), p.VD
	}
	p.Aperture = 90
	return p
}

// FaceViews expands a mono view into the five face views, each in a square cell of the
// view's viewport.
//
// Parameters:
//   - v: the composed mono view
//
// Returns:
//   - []compositor.View: the face views in Face order
func FaceViews(v compositor.View) []compositor.View {
	vp := v.Viewport
	side := min(vp.Width, vp.Height) / 3
	ox := vp.X + (vp.Width-3*side)/2
	oy := vp.Y + (vp.Height-3*side)/2

	out := make([]compositor.View, 0, len(faceCell))
	for face, cell := range faceCell {
		pose := FacePose(v.Pose, Face(face))
		fr := compositor.EyeFrustum(compositor.EyeParams{
			Pose:       pose,
			Projection: camera.Perspective,
			Aspect:     1,
			Near:       v.Frustum.Near,
			Far:        v.Frustum.Far,
			Eye:        compositor.EyeCentre,
		})
		fv := v
		fv.Eye = compositor.EyeCentre
		fv.Pose = pose
		fv.Frustum = fr
		fv.Projection = fr.Matrix()
		fv.View = compositor.EyeView(pose, compositor.EyeCentre)
		fv.Viewport = common.Viewport{X: ox + cell[0]*side, Y: oy + cell[1]*side, Width: side, Height: side}
		out = append(out, fv)
	}
	return out
}

func (d *fisheye) Draw(f Frame) {
	for _, v := range f.Views {
		for _, fv := range FaceViews(v) {
			f.DrawScene(fv)
		}
	}
}
