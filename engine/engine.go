package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/bridge"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/picking"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/translucency"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
)

// engine implements the Engine interface.
// Sequences input replay, camera update, composition and drawing once per display refresh.
type engine struct {
	ctx    RenderContext
	window window.Window

	width, height int
	clear         common.Colour

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	renderCallback  func(frame uint64)
	numericCallback func(digit int)

	now          func() time.Time
	fadeDuration time.Duration
	fader        *fader
	frame        uint64

	quitChannel chan struct{}
	quitOnce    sync.Once
	closeOnce   sync.Once
	closeErr    error

	deviceName string
	deviceOpts device.Options

	viewPath      string
	watchView     bool
	watcher       camera.ViewWatcher
	savedView     []byte
	autopilotPath string
	recordPath    string
	closers       []io.Closer

	tcpAddr   string
	wsAddr    string
	listeners []bridge.Listener

	placer  renderer.Placer
	items   []translucency.Item
	lastGen uint64
	synced  bool

	pointer pointerState
	focus   int // panel under the pointer, -1 for none; guarded by ctx.Lock
}

// Ensure engine implements Engine interface.
var _ Engine = &engine{}

// Engine is the main entry point for the engine.
// It owns the render context and drives frames either from the window's message loop or,
// without a window, on demand.
type Engine interface {
	// Context returns the render context.
	//
	// Returns:
	//   - *RenderContext: the context; fields must not be replaced while frames run
	Context() *RenderContext

	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetRenderCallback registers the function called after every presented frame.
	//
	// Parameters:
	//   - callback: function receiving the 1-based frame number
	SetRenderCallback(callback func(frame uint64))

	// SetNumericKeyCallback registers a receiver for digit keys. While set, digits no
	// longer select camera presets.
	//
	// Parameters:
	//   - callback: function receiving the digit, or nil to restore presets
	SetNumericKeyCallback(callback func(digit int))

	// SetDragCallback registers the function called after every handle drag update.
	//
	// Parameters:
	//   - callback: the callback
	SetDragCallback(callback picking.DragCallback)

	// HandleKey runs the key dispatch used for local keys and for bridge replay.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true if a binding consumed the event
	HandleKey(ev KeyEvent) bool

	// PointerButton handles a pointer button change.
	//
	// Parameters:
	//   - button: the button
	//   - pressed: true on press
	//   - x, y: the pointer position, origin top-left
	//   - mods: the held modifiers
	PointerButton(button window.MouseButton, pressed bool, x, y float64, mods common.Modifier)

	// PointerMove handles pointer motion.
	//
	// Parameters:
	//   - x, y: the pointer position, origin top-left
	PointerMove(x, y float64)

	// Scroll handles wheel input.
	//
	// Parameters:
	//   - delta: the wheel delta, positive away from the user
	Scroll(delta float64)

	// Resize updates the drawable size.
	//
	// Parameters:
	//   - width, height: the size in pixels
	Resize(width, height int)

	// Frame builds and presents one frame.
	//
	// Returns:
	//   - bool: false once the exit fade has finished or Quit was called
	Frame() bool

	// RunFrames renders frames without a message loop.
	//
	// Parameters:
	//   - n: the maximum number of frames
	//
	// Returns:
	//   - int: the number of frames rendered
	RunFrames(n int) int

	// Run drives frames from the window message loop until the window closes or the exit
	// fade finishes.
	Run()

	// FadeState returns the state of the exit fade.
	//
	// Returns:
	//   - FadeState: the state
	FadeState() FadeState

	// Listeners returns the running bridge listeners.
	//
	// Returns:
	//   - []bridge.Listener: the listeners
	Listeners() []bridge.Listener

	// Quit stops frame production. Safe to call multiple times.
	Quit()

	// Close stops the listeners and releases files, the window and the sorter's workers.
	//
	// Returns:
	//   - error: the errors encountered, joined
	Close() error
}

// NewEngine creates an engine. Without WithWindow it renders through a headless backend.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if a device driver cannot be resolved, a file cannot be opened or a
//     bridge listener cannot bind
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		width:       800,
		height:      600,
		quitChannel: make(chan struct{}),
		now:         time.Now,
		focus:       -1,
	}
	for _, opt := range options {
		opt(e)
	}

	if err := e.setup(); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// setup fills the render context defaults and opens every configured resource.
func (e *engine) setup() error {
	c := &e.ctx
	if c.Store == nil {
		c.Store = scene.NewStore()
	}
	if c.Camera == nil {
		c.Camera = camera.NewCamera()
	}
	if c.Compositor == nil {
		c.Compositor = compositor.NewCompositor()
	}
	if c.Cache == nil {
		c.Cache = renderer.NewBatchCache()
	}
	if c.Sorter == nil {
		c.Sorter = translucency.NewSorter()
	}
	if c.Queue == nil {
		c.Queue = bridge.NewQueue()
	}
	c.Lock = bridge.NewInteractionLock(e.tcpAddr != "" || e.wsAddr != "")

	if e.window != nil {
		e.width, e.height = e.window.Width(), e.window.Height()
		e.wireWindow()
	}
	if c.Backend == nil {
		var err error
		if e.window != nil {
			c.Backend, err = renderer.NewGLBackend(renderer.WithWindowSize(e.width, e.height))
		} else {
			c.Backend = renderer.NewHeadlessBackend(renderer.WithWindowSize(e.width, e.height))
		}
		if err != nil {
			return err
		}
	}
	if c.Picker == nil {
		c.Picker = picking.NewPicker(c.Store, c.Compositor, c.Backend)
	}
	e.placer = compositor.ScreenPlacer(c.Compositor)
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	e.fader = newFader(e.fadeDuration, e.now())
	e.checkStereo()

	if err := e.initDevice(); err != nil {
		return err
	}
	if err := e.initFiles(); err != nil {
		return err
	}
	return e.initBridge()
}

// checkStereo falls back to mono when quad-buffered stereo was requested but not granted,
// and to perspective when a stereo mode meets an orthographic camera.
func (e *engine) checkStereo() {
	c := &e.ctx
	mode := c.Compositor.Mode()
	if mode == compositor.ActiveStereo && e.window != nil && !e.window.Stereo() {
		common.Logger().Warn("quad-buffered stereo not granted, falling back to mono")
		c.Compositor.SetMode(compositor.Mono)
		return
	}
	if !mode.Stereo() {
		return
	}
	cams := []camera.Camera{c.Camera}
	for _, p := range c.Compositor.Panels() {
		if p.Camera != nil {
			cams = append(cams, p.Camera)
		}
	}
	for _, cam := range cams {
		if cam.Projection() == camera.Orthographic {
			common.Logger().Warn("orthographic projection has no stereo form, using perspective", "stereo", mode)
			cam.SetProjection(camera.Perspective)
		}
	}
}

func (e *engine) initDevice() error {
	mode := e.ctx.Compositor.Mode()
	if !mode.Delegated() {
		if e.deviceName != "" {
			common.Logger().Warn("device ignored outside delegated stereo modes", "device", e.deviceName, "stereo", mode)
		}
		return nil
	}
	name := common.Coalesce(e.deviceName, mode.Driver())
	drv, err := device.Lookup(name)
	if err != nil {
		return err
	}
	opts := e.deviceOpts
	opts.Width, opts.Height = e.width, e.height
	if err := drv.Prepare(opts); err != nil {
		common.Logger().Warn("device unusable, falling back to mono", "device", name, "error", err)
		e.ctx.Compositor.SetMode(compositor.Mono)
		return nil
	}
	e.ctx.Driver = drv
	common.Logger().Info("device ready", "device", name, "stereo", mode)
	return nil
}

func (e *engine) initFiles() error {
	cam := e.ctx.Camera
	if e.viewPath != "" {
		if err := camera.LoadViewFile(cam, e.viewPath); err != nil {
			common.Logger().Warn("view file not loaded", "path", e.viewPath, "error", err)
		}
		if e.watchView {
			w, err := camera.NewViewWatcher(e.viewPath)
			if err != nil {
				common.Logger().Warn("view file not watched", "path", e.viewPath, "error", err)
			} else {
				e.watcher = w
			}
		}
	}
	if e.autopilotPath != "" {
		f, err := os.Open(e.autopilotPath)
		if err != nil {
			return fmt.Errorf("engine: autopilot: %w", err)
		}
		e.closers = append(e.closers, f)
		cam.SetAutopilot(camera.NewPathPlayer(f))
	}
	if e.recordPath != "" {
		f, err := os.Create(e.recordPath)
		if err != nil {
			return fmt.Errorf("engine: record: %w", err)
		}
		e.closers = append(e.closers, f)
		cam.SetRecorder(camera.NewPathRecorder(f))
	}
	return nil
}

func (e *engine) initBridge() error {
	h := bridge.NewRoutedHandler(e.ctx.Queue, e.ctx.Lock, e.focusedCamera)
	if e.tcpAddr != "" {
		e.listeners = append(e.listeners, bridge.NewTCPListener(e.tcpAddr, h))
	}
	if e.wsAddr != "" {
		e.listeners = append(e.listeners, bridge.NewWebSocketListener(e.wsAddr, h))
	}
	for i, l := range e.listeners {
		if err := l.Start(); err != nil {
			e.listeners = e.listeners[:i]
			return fmt.Errorf("engine: bridge: %w", err)
		}
	}
	return nil
}

// wireWindow routes window events into the engine.
func (e *engine) wireWindow() {
	w := e.window
	w.SetResizeCallback(e.Resize)
	w.SetKeyCallback(func(key common.Key, mods common.Modifier) {
		e.HandleKey(KeyEvent{Key: key, Mods: mods})
	})
	w.SetCharCallback(func(ch rune, mods common.Modifier) {
		e.HandleKey(KeyEvent{Char: ch, Mods: mods})
	})
	w.SetMouseButtonCallback(e.PointerButton)
	w.SetMouseMoveCallback(e.PointerMove)
	w.SetScrollCallback(e.Scroll)
}

func (e *engine) Context() *RenderContext {
	return &e.ctx
}

func (e *engine) Window() window.Window {
	return e.window
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetRenderCallback(callback func(frame uint64)) {
	e.renderCallback = callback
}

func (e *engine) SetNumericKeyCallback(callback func(digit int)) {
	e.numericCallback = callback
}

func (e *engine) SetDragCallback(callback picking.DragCallback) {
	e.ctx.Picker.SetDragCallback(callback)
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = width, height
	if r, ok := e.ctx.Driver.(device.Resizer); ok {
		r.Resize(width, height)
	}
}

func (e *engine) FadeState() FadeState {
	return e.fader.State()
}

func (e *engine) Listeners() []bridge.Listener {
	return append([]bridge.Listener(nil), e.listeners...)
}

func (e *engine) RunFrames(n int) int {
	done := 0
	for done < n && !e.quitting() {
		e.Frame()
		done++
	}
	return done
}

func (e *engine) Run() {
	if e.window == nil {
		common.Logger().Warn("run without a window; use RunFrames")
		return
	}
	e.window.SetUpdateCallback(func() {
		start := e.now()
		if !e.Frame() {
			e.window.RequestClose()
			return
		}
		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})
	e.window.ProcessMessages()
	e.Quit()
}

// Quit signals frame production to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.release()
	})
	return e.closeErr
}

func (e *engine) release() error {
	e.Quit()
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, l := range e.listeners {
		errs = append(errs, l.Stop(ctx))
	}
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	if e.ctx.Sorter != nil {
		e.ctx.Sorter.Close()
	}
	if e.window != nil {
		errs = append(errs, e.window.Close())
	}
	return errors.Join(errs...)
}
