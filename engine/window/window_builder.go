package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 && height > 0 {
			w.width, w.height = width, height
		}
	}
}

// WithStereo requests a quad-buffered stereo context for active stereo.
//
// Parameters:
//   - enabled: whether to request left and right back buffers
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithStereo(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.stereo = enabled
	}
}

// WithSwapInterval sets the number of display refreshes per buffer swap. 0 disables vsync.
//
// Parameters:
//   - n: the swap interval
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSwapInterval(n int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.swapInterval = max(n, 0)
	}
}

// WithSamples requests a multisampled framebuffer.
//
// Parameters:
//   - n: samples per pixel, 0 for none
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSamples(n int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.samples = max(n, 0)
	}
}

// WithFullscreen opens the window fullscreen on the primary monitor.
//
// Parameters:
//   - enabled: whether to go fullscreen
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithFullscreen(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.fullscreen = enabled
	}
}
