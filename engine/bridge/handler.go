package bridge

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
)

// Handler applies parsed commands. Key commands go to the replay queue; motion commands
// mutate the camera directly under the interaction lock, on the caller's goroutine.
type Handler interface {
	// Handle applies one command and returns once it has taken effect.
	//
	// Parameters:
	//   - cmd: the command
	Handle(cmd Command)

	// Queue returns the keyboard replay queue.
	//
	// Returns:
	//   - Queue: the queue
	Queue() Queue
}

type handler struct {
	queue  Queue
	lock   sync.Locker
	target func() camera.Camera
}

// Ensure handler implements Handler interface.
var _ Handler = &handler{}

// NewHandler creates a command handler.
//
// Parameters:
//   - q: the keyboard replay queue
//   - lock: the interaction lock guarding cam
//   - cam: the camera motion commands apply to
//
// Returns:
//   - Handler: the newly created handler
func NewHandler(q Queue, lock sync.Locker, cam camera.Camera) Handler {
	return NewRoutedHandler(q, lock, func() camera.Camera { return cam })
}

// NewRoutedHandler creates a command handler whose motion commands go to whichever camera
// target returns. target is called with lock held.
//
// Parameters:
//   - q: the keyboard replay queue
//   - lock: the interaction lock guarding the cameras
//   - target: resolves the camera a motion command applies to
//
// Returns:
//   - Handler: the newly created handler
func NewRoutedHandler(q Queue, lock sync.Locker, target func() camera.Camera) Handler {
	return &handler{queue: q, lock: lock, target: target}
}

func (h *handler) Queue() Queue { return h.queue }

func (h *handler) Handle(cmd Command) {
	if cmd.Kind == CommandKeys {
		h.queue.Push(cmd.Chars)
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	cam := h.target()
	switch cmd.Kind {
	case CommandMouse:
		// screen x drives yaw, screen y drives pitch
		cam.Rotate(cmd.DY, -cmd.DX, 0, camera.SourcePointer)
	case CommandForward:
		cam.FlyForward(cmd.Amount)
	case CommandRoll:
		cam.Rotate(0, 0, cmd.Amount, camera.SourceKeyboard)
	}
}
