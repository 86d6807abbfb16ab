package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithPose sets the initial (and home) pose.
//
// Parameters:
//   - p: the pose
//
// Returns:
//   - CameraBuilderOption: functional option to set the pose
func WithPose(p Pose) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose = p
	}
}

// WithOptics overrides the focal length, aperture and eye separation of the initial pose.
// Zero values leave the corresponding field unchanged.
//
// Parameters:
//   - focal: the focal length
//   - aperture: the full field of view in degrees
//   - eyeSep: the stereo eye separation
//
// Returns:
//   - CameraBuilderOption: functional option to set the optics
func WithOptics(focal, aperture, eyeSep float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		if focal > 0 {
			c.pose.Focal = focal
		}
		if aperture > 0 {
			c.pose.Aperture = aperture
		}
		if eyeSep > 0 {
			c.pose.EyeSep = eyeSep
		}
	}
}

// WithMode sets the initial navigation mode.
//
// Parameters:
//   - m: the navigation mode
//
// Returns:
//   - CameraBuilderOption: functional option to set the mode
func WithMode(m Mode) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.mode = m
	}
}

// WithProjection sets the projection mode.
//
// Parameters:
//   - p: the projection mode
//
// Returns:
//   - CameraBuilderOption: functional option to set the projection
func WithProjection(p ProjectionMode) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = p
	}
}

// WithSpeed sets the forward speed multiplier.
//
// Parameters:
//   - s: the speed
//
// Returns:
//   - CameraBuilderOption: functional option to set the speed
func WithSpeed(s float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		if s > 0 {
			c.speed = s
		}
	}
}

// WithTranslateDistance fixes the length of one translation step instead of deriving it from
// the scene diagonal.
//
// Parameters:
//   - d: the step length (values <= 0 restore the derived step)
//
// Returns:
//   - CameraBuilderOption: functional option to set the step length
func WithTranslateDistance(d float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.stepOverride = d
	}
}

// WithSceneDiagonal sets the initial scene diagonal.
//
// Parameters:
//   - d: the bounding box diagonal
//
// Returns:
//   - CameraBuilderOption: functional option to set the diagonal
func WithSceneDiagonal(d float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		if d > 0 {
			c.diagonal = d
		}
	}
}

// WithAutospin sets the initial autospin axis and per-frame step in degrees.
//
// Parameters:
//   - a: the axis
//   - step: the per-frame rotation in degrees (values <= 0 keep the default)
//
// Returns:
//   - CameraBuilderOption: functional option to set autospin
func WithAutospin(a Axis, step float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.spinAxis = a
		if step > 0 {
			c.spinStep = step
		}
	}
}
