package compositor

import "github.com/Carmen-Shannon/oxy-vis/common"

// CompositorBuilderOption is a functional option for configuring a Compositor.
type CompositorBuilderOption func(*compositor)

// WithStereoMode sets the initial stereo mode.
//
// Parameters:
//   - m: the stereo mode
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithStereoMode(m StereoMode) CompositorBuilderOption {
	return func(c *compositor) {
		c.mode = m
	}
}

// WithNearFarExpand sets the clip plane expansion factor. The near plane is divided by it and
// the far plane multiplied.
//
// Parameters:
//   - f: the factor (values <= 0 are ignored)
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithNearFarExpand(f float64) CompositorBuilderOption {
	return func(c *compositor) {
		if f > 0 {
			c.expand = f
		}
	}
}

// WithPanels replaces the default full-window panel. Panels with invalid rectangles are
// dropped.
//
// Parameters:
//   - panels: the panels
//
// Returns:
//   - CompositorBuilderOption: option function to apply
func WithPanels(panels ...Panel) CompositorBuilderOption {
	return func(c *compositor) {
		for _, p := range panels {
			if !p.Rect.Valid() {
				common.Logger().Warn("panel dropped", "rect", p.Rect)
				continue
			}
			c.panels = append(c.panels, p)
		}
	}
}
