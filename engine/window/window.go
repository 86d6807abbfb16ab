package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-vis/common"
)

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Window provides platform windowing, a GL 2.1 context and input event handling.
// Wraps platform-specific window implementations with a common interface. Pointer
// coordinates are window pixels with the origin at the top-left, as the platform reports them.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/away from the user)
	SetScrollCallback(callback func(delta float64))

	// SetKeyCallback sets the callback for presses and repeats of keys. Printable keys are
	// also reported through the char callback.
	//
	// Parameters:
	//   - callback: function receiving the key and held modifiers
	SetKeyCallback(callback func(key common.Key, mods common.Modifier))

	// SetCharCallback sets the callback for text input.
	//
	// Parameters:
	//   - callback: function receiving the character and held modifiers
	SetCharCallback(callback func(ch rune, mods common.Modifier))

	// SetMouseButtonCallback sets the callback for pointer button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button, its new state, the pointer position and
	//     held modifiers
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float64, mods common.Modifier))

	// SetMouseMoveCallback sets the callback for pointer movement.
	//
	// Parameters:
	//   - callback: function receiving the pointer position
	SetMouseMoveCallback(callback func(x, y float64))

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// Stereo reports whether the context has quad-buffered stereo.
	//
	// Returns:
	//   - bool: true if left and right back buffers exist
	Stereo() bool

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// stereo requests a quad-buffered stereo context.
	stereo bool

	// stereoGranted is set when the platform created a stereo context.
	stereoGranted bool

	// swapInterval is the number of refreshes to wait per swap.
	swapInterval int

	// samples is the multisample count, 0 for none.
	samples int

	// fullscreen opens the window on the primary monitor at its video mode.
	fullscreen bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float64)
	onKey         func(key common.Key, mods common.Modifier)
	onChar        func(ch rune, mods common.Modifier)
	onMouseButton func(button MouseButton, pressed bool, x, y float64, mods common.Modifier)
	onMouseMove   func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates a window with a current GL 2.1 context on the calling goroutine, which
// stays locked to its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window or context could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:        "oxy-vis",
		width:        1280,
		height:       720,
		swapInterval: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	if w.stereo && !w.stereoGranted {
		common.Logger().Warn("quad-buffered stereo unavailable, active stereo will show one eye")
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyCallback(callback func(key common.Key, mods common.Modifier)) {
	w.onKey = callback
}

func (w *engineWindow) SetCharCallback(callback func(ch rune, mods common.Modifier)) {
	w.onChar = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float64, mods common.Modifier)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) Stereo() bool {
	return w.stereoGranted
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
