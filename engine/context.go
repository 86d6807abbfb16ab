package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/engine/bridge"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/picking"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/Carmen-Shannon/oxy-vis/engine/translucency"
)

// RenderContext is everything a frame is built from. It is owned by the render goroutine.
// Two pieces cross goroutines: Queue, which locks itself, and the interaction state
// (cameras and drag) guarded by Lock.
type RenderContext struct {
	Store      scene.Store
	Camera     camera.Camera
	Compositor compositor.Compositor
	Backend    renderer.Backend
	Cache      renderer.BatchCache
	Sorter     translucency.Sorter
	Picker     picking.Picker
	Queue      bridge.Queue

	// Lock guards Camera, the panel cameras and the drag state. It is a no-op when no
	// bridge listener runs.
	Lock sync.Locker

	// Driver composes delegated stereo modes; nil otherwise.
	Driver device.Driver
}
