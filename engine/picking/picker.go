package picking

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/translucency"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	depthTowardStep = 0.995
	depthAwayStep   = 1.005
	depthMin        = 0.01
	depthMax        = 0.9999
)

// DragCallback is invoked after every drag update with the handle id and its new position in
// the handle's own frame: world coordinates for world-anchored handles, normalized panel
// coordinates for screen-anchored ones.
type DragCallback func(id uint32, pos mgl64.Vec3)

// DragState describes the handle being dragged.
type DragState struct {
	// Handle is the dragged handle id.
	Handle uint32
	// Panel is the panel whose matrices the drag works against.
	Panel int
	// Screen is true for screen-anchored handles.
	Screen bool
	// X and Y are the cached cursor coordinates: window pixels for world-anchored handles,
	// normalized panel coordinates for screen-anchored ones.
	X, Y float64
	// Depth is the normalized depth held fixed while the cursor moves.
	Depth float64
}

// Picker hit-tests handles against the compositor's cached matrices and runs the single
// drag state machine. It is used on the render goroutine with the interaction lock held.
type Picker interface {
	// Pick runs a selection pass over the handles visible under a window pixel.
	//
	// Parameters:
	//   - x, y: the pixel, origin bottom-left
	//   - winW, winH: the window size in pixels
	//
	// Returns:
	//   - uint32: the id of the nearest handle hit
	//   - bool: false if nothing was hit
	Pick(x, y float64, winW, winH int) (uint32, bool)

	// BeginDrag starts dragging a handle. It does nothing while another drag is active or
	// when the handle or the panel's matrices are missing.
	//
	// Parameters:
	//   - id: the handle id
	//   - panel: the panel the drag started in
	//
	// Returns:
	//   - bool: true if a drag was started
	BeginDrag(id uint32, panel int) bool

	// UpdateDrag moves the dragged handle by a cursor delta. Screen-anchored handles move by
	// the delta normalized to the panel's sub-viewport; world-anchored handles move by raw
	// pixels at the cached depth.
	//
	// Parameters:
	//   - dx, dy: the cursor delta in pixels, y up
	UpdateDrag(dx, dy float64)

	// AdjustDepth nudges the cached depth of a dragged world-anchored handle.
	//
	// Parameters:
	//   - toward: true to move toward the camera
	AdjustDepth(toward bool)

	// EndDrag clears the drag state.
	EndDrag()

	// Dragging returns the active drag.
	//
	// Returns:
	//   - DragState: the drag state
	//   - bool: false if no drag is active
	Dragging() (DragState, bool)

	// SetDragCallback sets the callback invoked after every drag update.
	//
	// Parameters:
	//   - cb: the callback, or nil
	SetDragCallback(cb DragCallback)
}

type picker struct {
	mu *sync.Mutex

	store   scene.Store
	comp    compositor.Compositor
	backend renderer.Backend

	pickSize float64
	capacity int
	onDrag   DragCallback

	drag   DragState
	active bool
}

// Ensure picker implements Picker interface.
var _ Picker = &picker{}

// NewPicker creates a picker over a scene, the compositor's matrix cache and a backend's
// selection mode.
//
// Parameters:
//   - store: the scene holding the handles
//   - comp: the compositor providing cached matrices
//   - backend: the backend the selection pass runs on
//   - options: functional options to configure the picker
//
// Returns:
//   - Picker: the newly created picker
func NewPicker(store scene.Store, comp compositor.Compositor, backend renderer.Backend, options ...PickerBuilderOption) Picker {
	p := &picker{
		mu:       &sync.Mutex{},
		store:    store,
		comp:     comp,
		backend:  backend,
		pickSize: 3,
		capacity: 512,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// subViewport folds a pixel in a split panel onto the first sub-viewport, which the cached
// matrices describe.
func subViewport(x float64, vp common.Viewport) float64 {
	if vp.Width <= 0 {
		return x
	}
	rel := math.Mod(x-float64(vp.X), float64(vp.Width))
	if rel < 0 {
		rel += float64(vp.Width)
	}
	return float64(vp.X) + rel
}

func (p *picker) Pick(x, y float64, winW, winH int) (uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	panel, ok := p.comp.PanelAt(x, y, winW, winH)
	if !ok {
		return 0, false
	}
	m, ok := p.comp.Cached(panel)
	if !ok {
		return 0, false
	}
	handles := p.store.Handles()
	if len(handles) == 0 {
		return 0, false
	}

	x = subViewport(x, m.Viewport)
	proj := common.PickMatrix(x, y, p.pickSize, p.pickSize, m.Viewport).Mul4(m.Projection)
	right := m.Model.Row(0).Vec3()
	up := m.Model.Row(1).Vec3()

	p.backend.SetViewport(m.Viewport)
	p.backend.SetMatrices(proj, m.Model)
	p.backend.BeginSelect(max(p.capacity, len(handles)))
	for _, h := range handles {
		if !h.Anchor().VisibleIn(panel) {
			continue
		}
		centre := h.Position
		if h.Anchor().IsScreen() {
			centre = m.PlaceScreen(h.Position)
		}
		p.backend.LoadName(h.ID)
		p.backend.DrawBatch(translucency.HandleSprite(h, centre, right, up))
	}
	hit, ok := renderer.Nearest(p.backend.EndSelect())
	if !ok {
		return 0, false
	}
	return hit.Name, true
}

func (p *picker) BeginDrag(id uint32, panel int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return false
	}
	h, ok := p.store.Handle(id)
	if !ok {
		return false
	}

	d := DragState{Handle: id, Panel: panel, Screen: h.Anchor().IsScreen()}
	if d.Screen {
		d.Panel = h.Anchor().Panel()
		d.X, d.Y, d.Depth = h.Position[0], h.Position[1], h.Position[2]
	} else {
		m, ok := p.comp.Cached(panel)
		if !ok {
			return false
		}
		win := m.Project(h.Position)
		d.X, d.Y, d.Depth = win[0], win[1], win[2]
	}

	p.drag = d
	p.active = true
	p.store.SetHandleSelected(id, true)
	common.Logger().Debug("drag started", "handle", id, "panel", d.Panel, "screen", d.Screen)
	return true
}

// apply recomputes the handle position from the drag state and moves it. Caller must hold
// the mutex.
func (p *picker) apply() {
	var pos mgl64.Vec3
	if p.drag.Screen {
		pos = mgl64.Vec3{p.drag.X, p.drag.Y, p.drag.Depth}
	} else {
		m, ok := p.comp.Cached(p.drag.Panel)
		if !ok {
			return
		}
		var err error
		pos, err = m.UnProject(mgl64.Vec3{p.drag.X, p.drag.Y, p.drag.Depth})
		if err != nil {
			return
		}
	}
	if !p.store.MoveHandle(p.drag.Handle, pos) {
		return
	}
	if p.onDrag != nil {
		p.onDrag(p.drag.Handle, pos)
	}
}

func (p *picker) UpdateDrag(dx, dy float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	if p.drag.Screen {
		m, ok := p.comp.Cached(p.drag.Panel)
		if !ok {
			return
		}
		p.drag.X += dx / float64(max(m.Viewport.Width, 1))
		p.drag.Y += dy / float64(max(m.Viewport.Height, 1))
	} else {
		p.drag.X += dx
		p.drag.Y += dy
	}
	p.apply()
}

func (p *picker) AdjustDepth(toward bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || p.drag.Screen {
		return
	}
	step := depthAwayStep
	if toward {
		step = depthTowardStep
	}
	p.drag.Depth = common.Clamp(p.drag.Depth*step, depthMin, depthMax)
	p.apply()
}

func (p *picker) EndDrag() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.store.SetHandleSelected(p.drag.Handle, false)
	p.active = false
	p.drag = DragState{}
}

func (p *picker) Dragging() (DragState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drag, p.active
}

func (p *picker) SetDragCallback(cb DragCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDrag = cb
}
