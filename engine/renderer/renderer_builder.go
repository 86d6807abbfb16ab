package renderer

// backendConfig collects the options shared by every Backend implementation.
type backendConfig struct {
	windowWidth  int
	windowHeight int
	smoothLines  bool
}

// BackendBuilderOption is a functional option applied to a backend during construction.
type BackendBuilderOption func(*backendConfig)

// WithWindowSize sets the window size used by DrawOverlay and the row mask.
// Backends are told about later resizes through SetRowMask.
//
// Parameters:
//   - width: the window width in pixels
//   - height: the window height in pixels
//
// Returns:
//   - BackendBuilderOption: a function that applies the window size option to a backend
func WithWindowSize(width, height int) BackendBuilderOption {
	return func(c *backendConfig) {
		c.windowWidth = width
		c.windowHeight = height
	}
}

// WithSmoothLines enables line antialiasing.
//
// Parameters:
//   - smooth: true to antialias lines
//
// Returns:
//   - BackendBuilderOption: a function that applies the line smoothing option to a backend
func WithSmoothLines(smooth bool) BackendBuilderOption {
	return func(c *backendConfig) {
		c.smoothLines = smooth
	}
}

func newBackendConfig(options []BackendBuilderOption) backendConfig {
	c := backendConfig{windowWidth: 1, windowHeight: 1}
	for _, opt := range options {
		opt(&c)
	}
	return c
}
