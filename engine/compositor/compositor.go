package compositor

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/go-gl/mathgl/mgl64"
)

// Panel is a rectangular region of the window with an optional camera of its own.
type Panel struct {
	// Rect is the panel's normalized window rectangle.
	Rect common.Rect
	// Active panels are drawn and can be picked in.
	Active bool
	// Camera is the panel's independent camera, or nil to follow the shared camera.
	Camera camera.Camera
}

// View is one sub-draw of a panel: the eye it shows, the buffer and viewport it lands in and
// the matrices it is drawn with.
type View struct {
	Panel      int
	Eye        Eye
	Buffer     renderer.Buffer
	Viewport   common.Viewport
	Projection mgl64.Mat4
	View       mgl64.Mat4
	Frustum    Frustum
	Pose       camera.Pose
}

// ViewProjection returns the combined projection × view matrix.
func (v View) ViewProjection() mgl64.Mat4 {
	return v.Projection.Mul4(v.View)
}

// Compositor builds the per-panel, per-eye matrices of every frame and keeps the per-panel
// matrix cache. Panels are composed one at a time; the panel being composed is "current".
// Thread-safe for concurrent access.
type Compositor interface {
	// Mode returns the stereo mode.
	//
	// Returns:
	//   - StereoMode: the stereo mode
	Mode() StereoMode

	// SetMode sets the stereo mode.
	//
	// Parameters:
	//   - m: the stereo mode
	SetMode(m StereoMode)

	// NearFarExpand returns the clip plane expansion factor.
	//
	// Returns:
	//   - float64: the factor
	NearFarExpand() float64

	// AddPanel appends an active panel.
	//
	// Parameters:
	//   - rect: the normalized window rectangle
	//   - cam: the panel's independent camera, or nil
	//
	// Returns:
	//   - int: the panel index
	//   - error: an error if the rectangle is invalid
	AddPanel(rect common.Rect, cam camera.Camera) (int, error)

	// Panels returns a copy of the panel list.
	//
	// Returns:
	//   - []Panel: the panels
	Panels() []Panel

	// SetPanelActive enables or disables drawing a panel.
	//
	// Parameters:
	//   - panel: the panel index
	//   - active: the new state
	SetPanelActive(panel int, active bool)

	// CameraOf returns the camera a panel is drawn with.
	//
	// Parameters:
	//   - panel: the panel index
	//   - shared: the shared camera
	//
	// Returns:
	//   - camera.Camera: the panel's own camera, or shared
	CameraOf(panel int, shared camera.Camera) camera.Camera

	// Current returns the panel being composed, or -1 between panels.
	//
	// Returns:
	//   - int: the current panel
	Current() int

	// Compose builds the views of one panel for the current stereo mode and refreshes the
	// panel's matrix cache. The panel becomes current until EndPanel.
	//
	// Parameters:
	//   - panel: the panel index
	//   - cam: the camera the panel is drawn with
	//   - winW, winH: the window size in pixels
	//
	// Returns:
	//   - []View: the views in drawing order
	Compose(panel int, cam camera.Camera, winW, winH int) []View

	// EndPanel clears the current panel.
	EndPanel()

	// Cached returns the matrices a panel was last composed with.
	//
	// Parameters:
	//   - panel: the panel index
	//
	// Returns:
	//   - Matrices: the cached matrices
	//   - bool: false if the panel has not been composed
	Cached(panel int) (Matrices, bool)

	// PanelAt returns the active panel containing a window pixel.
	//
	// Parameters:
	//   - x, y: the pixel, origin bottom-left
	//   - winW, winH: the window size in pixels
	//
	// Returns:
	//   - int: the panel index
	//   - bool: false if no active panel contains the pixel
	PanelAt(x, y float64, winW, winH int) (int, bool)
}

type compositor struct {
	mu *sync.RWMutex

	mode    StereoMode
	expand  float64
	panels  []Panel
	cache   map[int]Matrices
	current int
}

// Ensure compositor implements Compositor interface.
var _ Compositor = &compositor{}

// NewCompositor creates a compositor. Without WithPanels it has one panel covering the window.
//
// Parameters:
//   - options: functional options to configure the compositor
//
// Returns:
//   - Compositor: the newly created compositor
func NewCompositor(options ...CompositorBuilderOption) Compositor {
	c := &compositor{
		mu:      &sync.RWMutex{},
		expand:  1,
		cache:   make(map[int]Matrices),
		current: -1,
	}
	for _, option := range options {
		option(c)
	}
	if len(c.panels) == 0 {
		c.panels = []Panel{{Rect: common.FullRect, Active: true}}
	}
	return c
}

func (c *compositor) Mode() StereoMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *compositor) SetMode(m StereoMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	clear(c.cache)
}

func (c *compositor) NearFarExpand() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expand
}

func (c *compositor) AddPanel(rect common.Rect, cam camera.Camera) (int, error) {
	if !rect.Valid() {
		return -1, fmt.Errorf("compositor: invalid panel rectangle %v", rect)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panels = append(c.panels, Panel{Rect: rect, Active: true, Camera: cam})
	return len(c.panels) - 1, nil
}

func (c *compositor) Panels() []Panel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Panel(nil), c.panels...)
}

func (c *compositor) SetPanelActive(panel int, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if panel >= 0 && panel < len(c.panels) {
		c.panels[panel].Active = active
	}
}

func (c *compositor) CameraOf(panel int, shared camera.Camera) camera.Camera {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if panel >= 0 && panel < len(c.panels) && c.panels[panel].Camera != nil {
		return c.panels[panel].Camera
	}
	return shared
}

func (c *compositor) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// layout returns the eyes, buffers and viewports of a panel's views for a stereo mode.
func layout(mode StereoMode, p common.Viewport) ([]Eye, []renderer.Buffer, []common.Viewport) {
	back := renderer.BufferBack
	switch mode {
	case ActiveStereo:
		return []Eye{EyeLeft, EyeRight},
			[]renderer.Buffer{renderer.BufferBackLeft, renderer.BufferBackRight},
			[]common.Viewport{p, p}
	case AnaglyphStereo, InterleavedStereo:
		return []Eye{EyeLeft, EyeRight}, []renderer.Buffer{back, back}, []common.Viewport{p, p}
	case DualStereo, WarpedDualStereo:
		return []Eye{EyeLeft, EyeRight}, []renderer.Buffer{back, back}, split(p, 2)
	case TrioStereo:
		return []Eye{EyeCentre, EyeLeft, EyeRight}, []renderer.Buffer{back, back, back}, split(p, 3)
	}
	return []Eye{EyeCentre}, []renderer.Buffer{back}, []common.Viewport{p}
}

// split divides a viewport into n side-by-side columns; the last absorbs any remainder.
func split(p common.Viewport, n int) []common.Viewport {
	out := make([]common.Viewport, n)
	w := p.Width / n
	for i := range n {
		out[i] = common.Viewport{X: p.X + i*w, Y: p.Y, Width: w, Height: p.Height}
	}
	out[n-1].Width = p.Width - (n-1)*w
	return out
}

func (c *compositor) Compose(panel int, cam camera.Camera, winW, winH int) []View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if panel < 0 || panel >= len(c.panels) || cam == nil {
		return nil
	}
	c.current = panel

	pv := c.panels[panel].Rect.Within(common.Viewport{Width: winW, Height: winH})
	pose := cam.Pose()
	near, far := ClipPlanes(cam.SceneDiagonal(), pose.Focal, c.mode.Stereo(), c.expand)
	aspect := pv.Aspect() / float64(c.mode.Divisor())
	params := EyeParams{
		Pose:       pose,
		Projection: cam.Projection(),
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}

	eyes, bufs, vps := layout(c.mode, pv)
	views := make([]View, len(eyes))
	for i, eye := range eyes {
		params.Eye = eye
		f := EyeFrustum(params)
		views[i] = View{
			Panel:      panel,
			Eye:        eye,
			Buffer:     bufs[i],
			Viewport:   vps[i],
			Projection: f.Matrix(),
			View:       EyeView(pose, eye),
			Frustum:    f,
			Pose:       pose,
		}
	}

	params.Eye = EyeCentre
	centre := EyeFrustum(params)
	c.cache[panel] = Matrices{
		Model:      EyeView(pose, EyeCentre),
		Projection: centre.Matrix(),
		Viewport:   common.Viewport{X: pv.X, Y: pv.Y, Width: pv.Width / c.mode.Divisor(), Height: pv.Height},
	}
	return views
}

func (c *compositor) EndPanel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = -1
}

func (c *compositor) Cached(panel int) (Matrices, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.cache[panel]
	return m, ok
}

func (c *compositor) PanelAt(x, y float64, winW, winH int) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	win := common.Viewport{Width: winW, Height: winH}
	for i := len(c.panels) - 1; i >= 0; i-- {
		p := c.panels[i]
		if p.Active && p.Rect.Within(win).Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}
