package engine

import (
	"bytes"
	"os"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/translucency"
)

// staticKey caches the world-anchored opaque batches shared by every panel.
var staticKey = renderer.CacheKey{Panel: -1, Pass: renderer.PassStatic}

func (e *engine) Frame() bool {
	if e.quitting() {
		return false
	}
	c := &e.ctx

	for _, ch := range c.Queue.Drain() {
		e.HandleKey(KeyEvent{Char: ch})
	}
	e.reloadView()

	snap := c.Store.Snapshot()
	panels := c.Compositor.Panels()

	c.Lock.Lock()
	e.syncScene(snap)
	c.Camera.Update()
	for _, p := range panels {
		if p.Camera != nil {
			p.Camera.Update()
		}
	}
	c.Lock.Unlock()

	w, h := e.width, e.height
	c.Backend.BeginFrame(e.clear)
	delegated := c.Compositor.Mode().Delegated() && c.Driver != nil
	for i, p := range panels {
		if !p.Active {
			continue
		}
		cam := c.Compositor.CameraOf(i, c.Camera)
		c.Lock.Lock()
		views := c.Compositor.Compose(i, cam, w, h)
		c.Lock.Unlock()

		if delegated {
			c.Driver.Draw(device.Frame{
				Backend: c.Backend,
				Views:   views,
				Width:   w,
				Height:  h,
				DrawScene: func(v compositor.View) {
					e.drawView(v, snap)
				},
			})
		} else {
			for _, v := range views {
				e.drawView(v, snap)
			}
		}
		c.Compositor.EndPanel()
	}

	if alpha := e.fader.Step(e.now()); alpha > 0 {
		c.Backend.SetDrawBuffer(renderer.BufferBack)
		c.Backend.SetViewport(common.Viewport{Width: w, Height: h})
		c.Backend.DrawOverlay(common.Colour{0, 0, 0, alpha})
	}
	c.Backend.EndFrame()

	if e.window != nil {
		e.window.SwapBuffers()
	}
	e.frame++
	if e.renderCallback != nil {
		e.renderCallback(e.frame)
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.fader.State() == FadeDone {
		e.Quit()
		return false
	}
	return true
}

// syncScene drops cached batches and rescales the cameras when the scene has changed.
// Callers hold the interaction lock.
func (e *engine) syncScene(snap scene.Snapshot) {
	if e.synced && snap.Generation == e.lastGen {
		return
	}
	e.synced = true
	e.lastGen = snap.Generation
	e.ctx.Cache.Invalidate()

	diag := e.ctx.Store.Diagonal()
	e.ctx.Camera.SetSceneDiagonal(diag)
	for _, p := range e.ctx.Compositor.Panels() {
		if p.Camera != nil {
			p.Camera.SetSceneDiagonal(diag)
		}
	}
}

// reloadView applies a pending view file change without blocking. A reload moves the camera
// but keeps its home pose, and contents the engine wrote itself are skipped.
func (e *engine) reloadView() {
	if e.watcher == nil {
		return
	}
	select {
	case <-e.watcher.Changes():
	default:
		return
	}
	data, err := os.ReadFile(e.viewPath)
	if err != nil {
		common.Logger().Warn("view file not reloaded", "path", e.viewPath, "error", err)
		return
	}
	if e.savedView != nil && bytes.Equal(data, e.savedView) {
		return
	}

	e.ctx.Lock.Lock()
	defer e.ctx.Lock.Unlock()
	cam := e.ctx.Camera
	p, err := camera.ReadView(bytes.NewReader(data), cam.Pose())
	if err != nil {
		common.Logger().Warn("view file not reloaded", "path", e.viewPath, "error", err)
		return
	}
	cam.SetPose(p)
	common.Logger().Info("view reloaded", "path", e.viewPath)
}

// drawView draws the scene once into a view: opaque world geometry, the panel's opaque
// screen geometry, then the depth-sorted translucent pass.
func (e *engine) drawView(v compositor.View, snap scene.Snapshot) {
	c := &e.ctx
	b := c.Backend
	b.SetDrawBuffer(v.Buffer)
	b.SetViewport(v.Viewport)
	b.SetMatrices(v.Projection, v.View)
	b.SetBlend(common.BlendOpaque)
	b.SetDepthWrite(true)

	static, ok := c.Cache.Lookup(staticKey, snap.Generation)
	if !ok {
		static = renderer.BuildOpaque(snap, renderer.WorldOnly, renderer.IdentityPlacer)
		c.Cache.Store(staticKey, snap.Generation, static)
	}
	for _, batch := range static {
		b.DrawBatch(batch)
	}

	// screen placement follows the panel's matrices, so it is rebuilt every frame
	dynKey := renderer.CacheKey{Panel: v.Panel, Pass: renderer.PassDynamic}
	stamp := e.frame + 1
	dynamic, ok := c.Cache.Lookup(dynKey, stamp)
	if !ok {
		dynamic = renderer.BuildOpaque(snap, renderer.ScreenOf(v.Panel), e.placer)
		c.Cache.Store(dynKey, stamp, dynamic)
	}
	for _, batch := range dynamic {
		b.DrawBatch(batch)
	}

	e.items = translucency.Collect(snap, func(a scene.Anchor) bool {
		return a.VisibleIn(v.Panel)
	}, e.placer, e.items[:0])
	if len(e.items) == 0 {
		return
	}
	frustum := common.ExtractFrustum(v.ViewProjection())
	eye := compositor.EyePosition(v.Pose, v.Eye)
	sorted := c.Sorter.Order(e.items, eye, &frustum)
	runs := translucency.Runs(sorted)

	b.SetDepthWrite(false)
	for _, d := range translucency.Batches(runs, snap, e.placer, v.Pose.Right(), v.Pose.VU) {
		b.SetBlend(d.Blend)
		b.DrawBatch(d.Batch)
	}
	b.SetDepthWrite(true)
	b.SetBlend(common.BlendOpaque)
}
