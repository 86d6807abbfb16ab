package bridge

type listenerConfig struct {
	maxLine int
	path    string
}

// ListenerBuilderOption is a functional option for configuring a Listener.
type ListenerBuilderOption func(*listenerConfig)

// WithMaxLineLength sets the longest command line accepted. Longer lines close the
// connection. Defaults to 64 KiB.
//
// Parameters:
//   - n: the limit in bytes
//
// Returns:
//   - ListenerBuilderOption: option function to apply
func WithMaxLineLength(n int) ListenerBuilderOption {
	return func(c *listenerConfig) {
		if n > 0 {
			c.maxLine = n
		}
	}
}

// WithPath sets the HTTP path the websocket listener upgrades on. Defaults to "/".
//
// Parameters:
//   - path: the request path
//
// Returns:
//   - ListenerBuilderOption: option function to apply
func WithPath(path string) ListenerBuilderOption {
	return func(c *listenerConfig) {
		if path != "" {
			c.path = path
		}
	}
}

func newListenerConfig(options []ListenerBuilderOption) listenerConfig {
	cfg := listenerConfig{maxLine: 64 * 1024, path: "/"}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}
