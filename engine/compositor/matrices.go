package compositor

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Matrices is the {model, projection, viewport} triple cached per panel each frame. It holds
// the centre-eye matrices over one stereo sub-viewport and is what unprojection of
// screen-anchored primitives, picking and dragging work against.
type Matrices struct {
	Model      mgl64.Mat4
	Projection mgl64.Mat4
	Viewport   common.Viewport
}

// Project maps a world point to window coordinates.
func (m Matrices) Project(p mgl64.Vec3) mgl64.Vec3 {
	return common.Project(p, m.Model, m.Projection, m.Viewport)
}

// UnProject maps window coordinates to world space.
func (m Matrices) UnProject(win mgl64.Vec3) (mgl64.Vec3, error) {
	return common.UnProject(win, m.Model, m.Projection, m.Viewport)
}

// ToWindow maps normalized panel coordinates (x, y in [0, 1], z a depth in [0, 1]) to window
// coordinates.
func (m Matrices) ToWindow(n mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(m.Viewport.X) + n[0]*float64(m.Viewport.Width),
		float64(m.Viewport.Y) + n[1]*float64(m.Viewport.Height),
		n[2],
	}
}

// FromWindow maps window coordinates to normalized panel coordinates.
func (m Matrices) FromWindow(win mgl64.Vec3) mgl64.Vec3 {
	w := float64(max(m.Viewport.Width, 1))
	h := float64(max(m.Viewport.Height, 1))
	return mgl64.Vec3{
		(win[0] - float64(m.Viewport.X)) / w,
		(win[1] - float64(m.Viewport.Y)) / h,
		win[2],
	}
}

// PlaceScreen maps a screen-anchored position in normalized panel coordinates to the world
// point under it at that depth. If the matrices are singular the input is returned.
func (m Matrices) PlaceScreen(n mgl64.Vec3) mgl64.Vec3 {
	p, err := m.UnProject(m.ToWindow(n))
	if err != nil {
		return n
	}
	return p
}

// ScreenPlacer returns a renderer.Placer that maps screen-anchored positions through the
// cached matrices of their panel. World-anchored positions, and positions of panels that
// have not been composed yet, are returned unchanged.
//
// Parameters:
//   - c: the compositor whose cache is read
//
// Returns:
//   - renderer.Placer: the placer
func ScreenPlacer(c Compositor) renderer.Placer {
	return func(a scene.Anchor, p mgl64.Vec3) mgl64.Vec3 {
		if !a.IsScreen() {
			return p
		}
		m, ok := c.Cached(a.Panel())
		if !ok {
			return p
		}
		return m.PlaceScreen(p)
	}
}
