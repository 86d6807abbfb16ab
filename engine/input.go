package engine

import (
	"os"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
)

// KeyEvent is one key press. Printable keys carry Char; other keys carry Key and leave Char zero.
type KeyEvent struct {
	Key  common.Key
	Char rune
	Mods common.Modifier
}

const (
	keyTurnStep    = 2.0  // degrees per arrow or roll press
	speedFactor    = 1.25 // per +/- press
	eyeSepFactor   = 1.1  // per </> press
	pointerPanGain = 0.1  // translation steps per pointer pixel
)

// pointerState is the button and drag state of the pointer, in window pixels with a
// bottom-left origin. cam is the camera of the panel a rotate or pan drag started in.
type pointerState struct {
	x, y     float64
	rotating bool
	panning  bool
	cam      camera.Camera
}

func (e *engine) HandleKey(ev KeyEvent) bool {
	if ev.Char != 0 {
		if kh, ok := e.ctx.Driver.(device.KeyHandler); ok && kh.Key(ev.Char) {
			return true
		}
		return e.handleChar(ev.Char)
	}
	return e.handleSpecial(ev.Key, ev.Mods)
}

// withCamera runs fn on the focused camera under the interaction lock.
func (e *engine) withCamera(fn func(c camera.Camera)) {
	e.ctx.Lock.Lock()
	defer e.ctx.Lock.Unlock()
	fn(e.focusedCamera())
}

// focusedCamera returns the camera of the panel last under the pointer, falling back to the
// shared camera. Callers hold the interaction lock.
func (e *engine) focusedCamera() camera.Camera {
	if e.focus < 0 {
		return e.ctx.Camera
	}
	return e.ctx.Compositor.CameraOf(e.focus, e.ctx.Camera)
}

// setFocus records the panel under a pointer position. Callers hold the interaction lock.
func (e *engine) setFocus(x, y float64) {
	panel, ok := e.ctx.Compositor.PanelAt(x, y, e.width, e.height)
	if !ok {
		panel = -1
	}
	e.focus = panel
}

func (e *engine) handleChar(ch rune) bool {
	if ch >= '0' && ch <= '9' {
		digit := int(ch - '0')
		if e.numericCallback != nil {
			e.numericCallback(digit)
			return true
		}
		ok := false
		e.withCamera(func(c camera.Camera) { ok = c.GoPreset(digit) })
		return ok
	}

	switch ch {
	case 'Q':
		e.beginExit()
		return true
	case 'p':
		e.saveView()
		return true
	}

	handled := true
	e.withCamera(func(c camera.Camera) {
		switch ch {
		case 'h':
			c.GoHome()
		case 'x':
			if c.Mode() == camera.ModeFly {
				c.SetMode(camera.ModeInspect)
			} else {
				c.SetMode(camera.ModeFly)
			}
		case 'W':
			if c.Mode() == camera.ModeWalk {
				c.SetMode(camera.ModeInspect)
			} else {
				c.SetMode(camera.ModeWalk)
			}
		case 'a':
			c.SetAutopilotEnabled(!c.Autopilot())
		case 'X':
			c.ToggleAutospin(camera.AxisX)
		case 'Y':
			c.ToggleAutospin(camera.AxisY)
		case 'Z':
			c.ToggleAutospin(camera.AxisZ)
		case '+', '=':
			c.SetSpeed(c.Speed() * speedFactor)
		case '-':
			c.SetSpeed(c.Speed() / speedFactor)
		case '>':
			c.SetEyeSeparation(c.Pose().EyeSep * eyeSepFactor)
		case '<':
			c.SetEyeSeparation(c.Pose().EyeSep / eyeSepFactor)
		case '[':
			c.Rotate(0, 0, -keyTurnStep, camera.SourceKeyboard)
		case ']':
			c.Rotate(0, 0, keyTurnStep, camera.SourceKeyboard)
		case 'f':
			c.FlyForward(1)
		case 'b':
			c.FlyForward(-1)
		case 'o':
			if c.Projection() == camera.Orthographic {
				c.SetProjection(camera.Perspective)
			} else if mode := e.ctx.Compositor.Mode(); mode.Stereo() {
				common.Logger().Warn("orthographic projection has no stereo form", "stereo", mode)
			} else {
				c.SetProjection(camera.Orthographic)
			}
		default:
			handled = false
		}
	})
	return handled
}

func (e *engine) handleSpecial(key common.Key, mods common.Modifier) bool {
	switch {
	case key == common.KeyEsc && mods.Has(common.ModShift):
		e.beginExit()
		return true
	case key == common.KeyHome:
		e.withCamera(func(c camera.Camera) { c.GoHome() })
		return true
	case key >= common.Key0 && key <= common.Key9 && mods.Has(common.ModControl):
		slot := int(key - common.Key0)
		e.withCamera(func(c camera.Camera) { c.SetPreset(slot, c.Pose()) })
		return true
	case key.IsArrow():
		var dx, dy float64
		switch key {
		case common.KeyLeft:
			dx = -1
		case common.KeyRight:
			dx = 1
		case common.KeyUp:
			dy = 1
		case common.KeyDown:
			dy = -1
		}
		e.withCamera(func(c camera.Camera) {
			if mods.Has(common.ModControl) {
				c.Translate(dx, dy, camera.SourceKeyboard)
				return
			}
			c.Rotate(dy*keyTurnStep, -dx*keyTurnStep, 0, camera.SourceKeyboard)
		})
		return true
	}
	return false
}

// beginExit starts the exit fade; the loop stops once it completes.
func (e *engine) beginExit() {
	e.fader.Out(e.now())
	common.Logger().Info("exit requested", "fade", e.fader.State())
}

func (e *engine) saveView() {
	if e.viewPath == "" {
		common.Logger().Warn("no view file configured")
		return
	}
	e.ctx.Lock.Lock()
	err := camera.SaveViewFile(e.ctx.Camera, e.viewPath)
	e.ctx.Lock.Unlock()
	if err != nil {
		common.Logger().Error("view file not saved", "path", e.viewPath, "error", err)
		return
	}
	if e.watcher != nil {
		e.savedView, _ = os.ReadFile(e.viewPath)
	}
}

func (e *engine) PointerButton(button window.MouseButton, pressed bool, x, y float64, mods common.Modifier) {
	y = float64(e.height) - y
	e.pointer.x, e.pointer.y = x, y
	c := &e.ctx

	c.Lock.Lock()
	e.setFocus(x, y)
	if pressed {
		e.pointer.cam = e.focusedCamera()
	}
	c.Lock.Unlock()

	switch button {
	case window.MouseLeft:
		if !pressed {
			e.pointer.rotating = false
			c.Lock.Lock()
			c.Picker.EndDrag()
			c.Lock.Unlock()
			return
		}
		if mods.Has(common.ModShift) {
			if id, ok := c.Picker.Pick(x, y, e.width, e.height); ok {
				panel, _ := c.Compositor.PanelAt(x, y, e.width, e.height)
				c.Lock.Lock()
				c.Picker.BeginDrag(id, panel)
				c.Lock.Unlock()
				return
			}
		}
		e.pointer.rotating = true
	case window.MouseRight:
		e.pointer.panning = pressed
	}
}

func (e *engine) PointerMove(x, y float64) {
	y = float64(e.height) - y
	dx, dy := x-e.pointer.x, y-e.pointer.y
	e.pointer.x, e.pointer.y = x, y
	if dx == 0 && dy == 0 {
		return
	}

	c := &e.ctx
	c.Lock.Lock()
	defer c.Lock.Unlock()
	e.setFocus(x, y)
	switch {
	case dragging(c):
		c.Picker.UpdateDrag(dx, dy)
	case e.pointer.rotating && e.pointer.cam != nil:
		e.pointer.cam.Rotate(dy, -dx, 0, camera.SourcePointer)
	case e.pointer.panning && e.pointer.cam != nil:
		e.pointer.cam.Translate(-dx*pointerPanGain, -dy*pointerPanGain, camera.SourcePointer)
	}
}

func (e *engine) Scroll(delta float64) {
	c := &e.ctx
	c.Lock.Lock()
	defer c.Lock.Unlock()
	if dragging(c) {
		c.Picker.AdjustDepth(delta < 0)
		return
	}
	e.focusedCamera().FlyForward(delta)
}

func dragging(c *RenderContext) bool {
	_, ok := c.Picker.Dragging()
	return ok
}
