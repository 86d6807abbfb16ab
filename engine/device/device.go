package device

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
)

// ErrUnknownDevice is returned by Lookup for a name no driver is registered under.
var ErrUnknownDevice = errors.New("device: unknown driver")

// Options configures a driver before its first frame.
type Options struct {
	// Width and Height are the initial window size in pixels.
	Width, Height int
	// Params holds driver-specific settings from the configuration file.
	Params map[string]string
}

// Float returns a float parameter, or def when it is absent or unparsable.
func (o Options) Float(key string, def float64) float64 {
	v, ok := o.Params[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Frame is everything a driver needs to compose one panel.
type Frame struct {
	// Backend is the backend to draw with.
	Backend renderer.Backend
	// Views are the panel's views as composed for the stereo mode.
	Views []compositor.View
	// Width and Height are the window size in pixels.
	Width, Height int
	// DrawScene runs the opaque and translucent passes for one view, using its buffer,
	// viewport and matrices.
	DrawScene func(v compositor.View)
}

// Driver composes the eyes of a panel for a display device whose compositing is
// device-specific.
type Driver interface {
	// Prepare configures the driver once before the first frame.
	//
	// Parameters:
	//   - opts: the driver options
	//
	// Returns:
	//   - error: an error if the options are unusable
	Prepare(opts Options) error

	// Draw composes one panel.
	//
	// Parameters:
	//   - f: the frame to draw
	Draw(f Frame)
}

// Resizer is implemented by drivers that keep per-size state.
type Resizer interface {
	// Resize is called when the window size changes.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)
}

// KeyHandler is implemented by drivers with key bindings of their own.
type KeyHandler interface {
	// Key offers a character to the driver before the engine's bindings.
	//
	// Parameters:
	//   - ch: the character
	//
	// Returns:
	//   - bool: true if the driver consumed it
	Key(ch rune) bool
}

// Factory creates a fresh driver.
type Factory func() Driver

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a driver available under a name, replacing any previous registration.
//
// Parameters:
//   - name: the driver name
//   - f: the factory creating the driver
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup creates the driver registered under a name.
//
// Parameters:
//   - name: the driver name
//
// Returns:
//   - Driver: a new driver
//   - error: ErrUnknownDevice if nothing is registered under name
func Lookup(name string) (Driver, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
	return f(), nil
}

// Names returns the registered driver names in order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(compositor.AnaglyphStereo.Driver(), func() Driver { return &anaglyph{} })
	Register(compositor.InterleavedStereo.Driver(), func() Driver { return &interleaved{} })
	Register(compositor.WarpedDualStereo.Driver(), func() Driver { return &warped{} })
	Register(compositor.Fisheye.Driver(), func() Driver { return &fisheye{} })
}
