package device

import (
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/go-gl/mathgl/mgl64"
)

// warped draws the side-by-side halves of a dual projector rig, each through a keystone
// correction applied after projection. The right half uses the mirrored correction.
type warped struct {
	keystone float64
}

var _ Driver = &warped{}

// Keystone returns the post-projection matrix that tapers the image horizontally. With
// k > 0 the right edge of clip space shrinks and the left edge grows.
//
// Parameters:
//   - k: the taper coefficient, 0 for none
//
// Returns:
//   - mgl64.Mat4: the correction matrix
func Keystone(k float64) mgl64.Mat4 {
	m := mgl64.Ident4()
	m.Set(3, 0, k)
	return m
}

func (d *warped) Prepare(opts Options) error {
	d.keystone = opts.Float("keystone", 0)
	return nil
}

func (d *warped) Draw(f Frame) {
	for _, v := range f.Views {
		k := d.keystone
		if v.Eye == compositor.EyeRight {
			k = -k
		}
		v.Projection = Keystone(k).Mul4(v.Projection)
		f.DrawScene(v)
	}
}
