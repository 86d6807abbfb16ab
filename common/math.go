package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// epsilon below which a vector is treated as degenerate.
const epsilon = 1e-12

// Normalize returns v scaled to unit length, or v unchanged when it is (nearly) zero.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - mgl64.Vec3: the unit vector
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return v
	}
	return v.Mul(1 / l)
}

// Orthonormalize re-normalizes a view direction and up vector and removes any component of the
// up vector along the view direction. The returned pair is unit length and mutually orthogonal.
// If up is parallel to dir, a perpendicular up vector is synthesized.
//
// Parameters:
//   - dir: the view direction
//   - up: the approximate up vector
//
// Returns:
//   - mgl64.Vec3: the unit view direction
//   - mgl64.Vec3: the unit up vector orthogonal to it
func Orthonormalize(dir, up mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d := Normalize(dir)
	right := d.Cross(up)
	if right.Len() < 1e-9 {
		// any axis not parallel to d will do
		alt := mgl64.Vec3{0, 1, 0}
		if math.Abs(d[1]) > 0.9 {
			alt = mgl64.Vec3{1, 0, 0}
		}
		right = d.Cross(alt)
	}
	right = Normalize(right)
	u := Normalize(right.Cross(d))
	return d, u
}

// RightOf returns the unit right vector of a camera basis (dir × up).
func RightOf(dir, up mgl64.Vec3) mgl64.Vec3 {
	return Normalize(dir.Cross(up))
}

// RotateAbout rotates v by angle radians about the unit axis.
//
// Parameters:
//   - v: the vector to rotate
//   - axis: the unit rotation axis
//   - angle: the rotation angle in radians (right-handed)
//
// Returns:
//   - mgl64.Vec3: the rotated vector
func RotateAbout(v, axis mgl64.Vec3, angle float64) mgl64.Vec3 {
	if angle == 0 {
		return v
	}
	return mgl64.QuatRotate(angle, Normalize(axis)).Rotate(v)
}

// PickMatrix builds a projection pre-multiplier that restricts rendering to a width x height
// pixel region centred on (x, y) of the viewport, mapping that region onto the full clip volume.
// Pre-multiplying the projection by this matrix turns a normal pass into a hit-test pass.
//
// Parameters:
//   - x, y: region centre in window pixels (origin bottom-left)
//   - width, height: region size in pixels
//   - vp: the viewport the projection maps onto
//
// Returns:
//   - mgl64.Mat4: the pick matrix
func PickMatrix(x, y, width, height float64, vp Viewport) mgl64.Mat4 {
	if width <= 0 || height <= 0 {
		return mgl64.Ident4()
	}
	tx := (float64(vp.Width) + 2*(float64(vp.X)-x)) / width
	ty := (float64(vp.Height) + 2*(float64(vp.Y)-y)) / height
	sx := float64(vp.Width) / width
	sy := float64(vp.Height) / height
	return mgl64.Translate3D(tx, ty, 0).Mul4(mgl64.Scale3D(sx, sy, 1))
}

// Project maps a world point to window coordinates (x, y in pixels, z in [0, 1]).
func Project(p mgl64.Vec3, model, projection mgl64.Mat4, vp Viewport) mgl64.Vec3 {
	return mgl64.Project(p, model, projection, vp.X, vp.Y, vp.Width, vp.Height)
}

// UnProject maps window coordinates back to world space. It fails when the combined
// model-projection matrix is singular.
func UnProject(win mgl64.Vec3, model, projection mgl64.Mat4, vp Viewport) (mgl64.Vec3, error) {
	return mgl64.UnProject(win, model, projection, vp.X, vp.Y, vp.Width, vp.Height)
}
