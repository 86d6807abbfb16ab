package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/translucency"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets a custom configured window for the engine to use. Without a window the engine
// renders headless and frames are driven with RunFrames.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowSize sets the drawable size used without a window.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithBackend sets the drawing backend. Defaults to GL with a window and headless without.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.Backend) EngineBuilderOption {
	return func(e *engine) {
		e.ctx.Backend = b
	}
}

// WithStore sets the scene store.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStore(s scene.Store) EngineBuilderOption {
	return func(e *engine) {
		e.ctx.Store = s
	}
}

// WithCamera sets the shared camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.ctx.Camera = c
	}
}

// WithCompositor sets the compositor, which carries the stereo mode and panel layout.
//
// Parameters:
//   - c: the compositor
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompositor(c compositor.Compositor) EngineBuilderOption {
	return func(e *engine) {
		e.ctx.Compositor = c
	}
}

// WithSorter sets the translucency sorter. The engine closes it on Close.
//
// Parameters:
//   - s: the sorter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSorter(s translucency.Sorter) EngineBuilderOption {
	return func(e *engine) {
		e.ctx.Sorter = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithBridge starts command listeners. An empty address disables that listener. With either
// listener running, camera access is serialized by a real interaction lock.
//
// Parameters:
//   - tcpAddr: the line-protocol TCP address
//   - wsAddr: the WebSocket address
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBridge(tcpAddr, wsAddr string) EngineBuilderOption {
	return func(e *engine) {
		e.tcpAddr, e.wsAddr = tcpAddr, wsAddr
	}
}

// WithDevice selects the driver of a delegated stereo mode and its parameters. Without a name
// the mode's default driver is used.
//
// Parameters:
//   - name: the registered driver name
//   - opts: the driver options; size fields are filled by the engine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(name string, opts device.Options) EngineBuilderOption {
	return func(e *engine) {
		e.deviceName = name
		e.deviceOpts = opts
	}
}

// WithFadeDuration sets the length of the startup and exit fades. Zero disables fading.
//
// Parameters:
//   - d: the fade duration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFadeDuration(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.fadeDuration = d
	}
}

// WithClearColour sets the background colour.
//
// Parameters:
//   - c: the colour
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColour(c common.Colour) EngineBuilderOption {
	return func(e *engine) {
		e.clear = c
	}
}

// WithViewFile loads the camera pose from path at startup and saves to it on request.
//
// Parameters:
//   - path: the view file
//   - watch: reload the pose whenever the file changes
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewFile(path string, watch bool) EngineBuilderOption {
	return func(e *engine) {
		e.viewPath = path
		e.watchView = watch
	}
}

// WithAutopilot replays the camera path at path, starting immediately.
//
// Parameters:
//   - path: the path file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAutopilot(path string) EngineBuilderOption {
	return func(e *engine) {
		e.autopilotPath = path
	}
}

// WithRecordPath records the camera pose of every frame to path.
//
// Parameters:
//   - path: the output file, replaced if it exists
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecordPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.recordPath = path
	}
}

// WithClock replaces the time source used by fades and frame limiting.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
