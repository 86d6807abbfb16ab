package camera

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Mode is the navigation mode deciding how rotation input moves the camera.
type Mode int

const (
	// ModeInspect orbits the camera about the pivot.
	ModeInspect Mode = iota
	// ModeFly turns the camera in place with inertial smoothing.
	ModeFly
	// ModeWalk turns about the up vector; vertical input moves forward and back.
	ModeWalk
)

func (m Mode) String() string {
	switch m {
	case ModeFly:
		return "fly"
	case ModeWalk:
		return "walk"
	default:
		return "inspect"
	}
}

// Source tells navigation which device produced a delta. Pointer deltas are halved.
type Source int

const (
	SourceKeyboard Source = iota
	SourcePointer
)

// Axis selects the autospin axis in the camera's own frame: x is right, y is up, z is the view
// direction. AxisNone disables autospin.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "none"
	}
}

// ProjectionMode selects perspective or orthographic projection.
type ProjectionMode int

const (
	Perspective ProjectionMode = iota
	Orthographic
)

func (p ProjectionMode) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// ParseProjection parses "perspective" or "orthographic".
func ParseProjection(s string) (ProjectionMode, error) {
	switch s {
	case "", "perspective":
		return Perspective, nil
	case "orthographic", "ortho":
		return Orthographic, nil
	}
	return Perspective, fmt.Errorf("camera: unknown projection %q", s)
}

// Pose is the complete viewing state of a camera. Aperture is the full field of view in
// degrees; VD and VU are unit length and orthogonal.
type Pose struct {
	VP       mgl64.Vec3
	VD       mgl64.Vec3
	VU       mgl64.Vec3
	PR       mgl64.Vec3
	Focal    float64
	Aperture float64
	EyeSep   float64
}

// Right returns the unit right vector of the pose.
func (p Pose) Right() mgl64.Vec3 {
	return common.RightOf(p.VD, p.VU)
}

// normalized returns the pose with VD and VU orthonormalized.
func (p Pose) normalized() Pose {
	p.VD, p.VU = common.Orthonormalize(p.VD, p.VU)
	return p
}

const (
	// flySmoothing weights the previous rotation rate in fly mode.
	flySmoothing = 0.9
	// flyRest is the rate magnitude below which inertial turning stops.
	flyRest = 1e-4
	// stepFraction scales the scene diagonal into one translation step.
	stepFraction = 0.02
	// walkFraction converts a degree of vertical walk input into translation steps.
	walkFraction = 0.05
)

// Camera is the navigable viewpoint of a panel.
//
// A camera is not safe for concurrent use. Every caller that mutates it, whether the render
// goroutine or a bridge connection, holds the interaction lock of the render context.
type Camera interface {
	// Pose returns the current pose.
	//
	// Returns:
	//   - Pose: the current pose
	Pose() Pose

	// SetPose replaces the current pose. VD and VU are orthonormalized.
	//
	// Parameters:
	//   - p: the new pose
	SetPose(p Pose)

	// Home returns the pose GoHome restores.
	//
	// Returns:
	//   - Pose: the home pose
	Home() Pose

	// SetHome replaces the home pose.
	//
	// Parameters:
	//   - p: the new home pose
	SetHome(p Pose)

	// GoHome restores the home pose and stops inertial turning.
	GoHome()

	// Frame points the camera at the centre of a bounding box from a distance that fits it in
	// the aperture and makes that pose the home pose.
	//
	// Parameters:
	//   - lo: the minimum corner
	//   - hi: the maximum corner
	Frame(lo, hi mgl64.Vec3)

	// Mode returns the navigation mode.
	//
	// Returns:
	//   - Mode: the navigation mode
	Mode() Mode

	// SetMode switches the navigation mode. Entering Inspect re-centres the pivot in front of
	// the camera at its current distance.
	//
	// Parameters:
	//   - m: the new mode
	SetMode(m Mode)

	// Projection returns the projection mode.
	//
	// Returns:
	//   - ProjectionMode: the projection mode
	Projection() ProjectionMode

	// SetProjection sets the projection mode.
	//
	// Parameters:
	//   - p: the projection mode
	SetProjection(p ProjectionMode)

	// Translate moves the camera along its right and up vectors. In perspective projection the
	// pivot moves with it. One unit of delta is one translation step.
	//
	// Parameters:
	//   - dx: steps along the right vector
	//   - dy: steps along the up vector
	//   - src: the input device
	Translate(dx, dy float64, src Source)

	// Rotate applies a rotation in degrees according to the navigation mode.
	//
	// Parameters:
	//   - dpitch: rotation about the right vector
	//   - dyaw: rotation about the up vector
	//   - droll: rotation about the view direction
	//   - src: the input device
	Rotate(dpitch, dyaw, droll float64, src Source)

	// FlyForward moves the camera along the view direction by amount × speed translation
	// steps. In Inspect mode the camera dollies toward the pivot without passing it; otherwise
	// the pivot moves with the camera.
	//
	// Parameters:
	//   - amount: the signed number of steps
	FlyForward(amount float64)

	// Speed returns the forward speed multiplier.
	//
	// Returns:
	//   - float64: the speed
	Speed() float64

	// SetSpeed sets the forward speed multiplier.
	//
	// Parameters:
	//   - s: the speed (values <= 0 are ignored)
	SetSpeed(s float64)

	// SetEyeSeparation sets the stereo eye separation.
	//
	// Parameters:
	//   - sep: the eye separation in world units (values < 0 are ignored)
	SetEyeSeparation(sep float64)

	// SetSceneDiagonal sets the scene size translation steps and clip planes are scaled from.
	//
	// Parameters:
	//   - d: the bounding box diagonal
	SetSceneDiagonal(d float64)

	// SceneDiagonal returns the scene size set by SetSceneDiagonal.
	//
	// Returns:
	//   - float64: the bounding box diagonal
	SceneDiagonal() float64

	// StepDistance returns the length of one translation step.
	//
	// Returns:
	//   - float64: the override if set, otherwise a fixed fraction of the scene diagonal
	StepDistance() float64

	// Autospin returns the autospin axis.
	//
	// Returns:
	//   - Axis: the axis, or AxisNone
	Autospin() Axis

	// SetAutospin selects the autospin axis. Only one axis spins at a time.
	//
	// Parameters:
	//   - a: the axis, or AxisNone to stop
	SetAutospin(a Axis)

	// ToggleAutospin spins about a, or stops spinning if a is already the autospin axis.
	//
	// Parameters:
	//   - a: the axis
	ToggleAutospin(a Axis)

	// AutospinStep returns the fixed per-frame autospin rotation in degrees.
	//
	// Returns:
	//   - float64: the step
	AutospinStep() float64

	// SetAutopilot installs the path replayed while autopilot is on. Passing nil turns it off.
	//
	// Parameters:
	//   - p: the path player
	SetAutopilot(p PathPlayer)

	// Autopilot reports whether autopilot is on.
	//
	// Returns:
	//   - bool: true while a path is being replayed
	Autopilot() bool

	// SetAutopilotEnabled turns autopilot on or off. It cannot be turned on without a path.
	//
	// Parameters:
	//   - on: the requested state
	SetAutopilotEnabled(on bool)

	// SetRecorder installs a recorder that receives the pose after every Update. Passing nil
	// stops recording.
	//
	// Parameters:
	//   - r: the recorder
	SetRecorder(r PathRecorder)

	// Recording reports whether a recorder is installed.
	//
	// Returns:
	//   - bool: true while recording
	Recording() bool

	// SetPreset stores a pose under a preset slot.
	//
	// Parameters:
	//   - slot: the preset slot, 0 to 9
	//   - p: the pose
	SetPreset(slot int, p Pose)

	// GoPreset restores a preset pose.
	//
	// Parameters:
	//   - slot: the preset slot
	//
	// Returns:
	//   - bool: false if the slot is empty
	GoPreset(slot int) bool

	// Update advances per-frame motion: autopilot replay, or else autospin and inertial fly
	// turning. The resulting pose is handed to the recorder.
	Update()
}

type cameraImpl struct {
	pose Pose
	home Pose

	mode       Mode
	projection ProjectionMode

	speed        float64
	diagonal     float64
	stepOverride float64

	spinAxis Axis
	spinStep float64

	rate    mgl64.Vec3 // fly rotation rate: pitch, yaw, roll in degrees per frame
	turned  bool       // rotation input arrived since the last Update
	presets map[int]Pose

	pilot    PathPlayer
	piloting bool
	recorder PathRecorder
}

// Ensure cameraImpl implements Camera interface.
var _ Camera = &cameraImpl{}

// DefaultPose is the pose of a camera created without WithPose: ten units back along +z,
// looking at the origin.
var DefaultPose = Pose{
	VP:       mgl64.Vec3{0, 0, 10},
	VD:       mgl64.Vec3{0, 0, -1},
	VU:       mgl64.Vec3{0, 1, 0},
	PR:       mgl64.Vec3{0, 0, 0},
	Focal:    10,
	Aperture: 45,
	EyeSep:   0.5,
}

// NewCamera creates a camera. Its home pose is its initial pose.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		pose:     DefaultPose,
		speed:    1,
		diagonal: 1,
		spinStep: 0.5,
		presets:  make(map[int]Pose),
	}
	for _, option := range options {
		option(c)
	}
	c.pose = c.pose.normalized()
	c.home = c.pose
	return c
}

func (c *cameraImpl) Pose() Pose { return c.pose }

func (c *cameraImpl) SetPose(p Pose) {
	c.pose = p.normalized()
}

func (c *cameraImpl) Home() Pose { return c.home }

func (c *cameraImpl) SetHome(p Pose) {
	c.home = p.normalized()
}

func (c *cameraImpl) GoHome() {
	c.pose = c.home
	c.rate = mgl64.Vec3{}
}

func (c *cameraImpl) Frame(lo, hi mgl64.Vec3) {
	centre := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		radius = 1
	}
	half := mgl64.DegToRad(common.Coalesce(c.pose.Aperture, DefaultPose.Aperture) / 2)
	dist := radius / math.Sin(half)

	p := c.pose
	p.PR = centre
	p.VP = centre.Sub(c.pose.VD.Mul(dist))
	p.Focal = dist
	p.EyeSep = dist / 20
	c.diagonal = 2 * radius
	c.pose = p.normalized()
	c.home = c.pose
}

func (c *cameraImpl) Mode() Mode { return c.mode }

func (c *cameraImpl) SetMode(m Mode) {
	if m == ModeInspect && c.mode != ModeInspect {
		dist := c.pose.PR.Sub(c.pose.VP).Len()
		if dist < 1e-9 {
			dist = common.Coalesce(c.pose.Focal, 1)
		}
		c.pose.PR = c.pose.VP.Add(c.pose.VD.Mul(dist))
	}
	c.mode = m
	c.rate = mgl64.Vec3{}
}

func (c *cameraImpl) Projection() ProjectionMode { return c.projection }

func (c *cameraImpl) SetProjection(p ProjectionMode) { c.projection = p }

func scaleFor(src Source) float64 {
	if src == SourcePointer {
		return 0.5
	}
	return 1
}

func (c *cameraImpl) StepDistance() float64 {
	if c.stepOverride > 0 {
		return c.stepOverride
	}
	return c.diagonal * stepFraction
}

func (c *cameraImpl) Translate(dx, dy float64, src Source) {
	s := scaleFor(src) * c.StepDistance()
	offset := c.pose.Right().Mul(dx * s).Add(c.pose.VU.Mul(dy * s))
	c.pose.VP = c.pose.VP.Add(offset)
	if c.projection == Perspective {
		c.pose.PR = c.pose.PR.Add(offset)
	}
}

// rotation returns the quaternion turning by pitch, yaw and roll degrees about the current
// right, up and view vectors.
func (c *cameraImpl) rotation(pitch, yaw, roll float64) mgl64.Quat {
	right := c.pose.Right()
	q := mgl64.QuatIdent()
	if yaw != 0 {
		q = q.Mul(mgl64.QuatRotate(mgl64.DegToRad(yaw), c.pose.VU))
	}
	if pitch != 0 {
		q = q.Mul(mgl64.QuatRotate(mgl64.DegToRad(pitch), right))
	}
	if roll != 0 {
		q = q.Mul(mgl64.QuatRotate(mgl64.DegToRad(roll), c.pose.VD))
	}
	return q
}

// orbit turns the camera about the pivot.
func (c *cameraImpl) orbit(pitch, yaw, roll float64) {
	q := c.rotation(pitch, yaw, roll)
	offset := q.Rotate(c.pose.VP.Sub(c.pose.PR))
	c.pose.VP = c.pose.PR.Add(offset)
	c.pose.VD, c.pose.VU = common.Orthonormalize(q.Rotate(c.pose.VD), q.Rotate(c.pose.VU))
}

// turn rotates the camera in place, carrying the pivot at its current distance.
func (c *cameraImpl) turn(pitch, yaw, roll float64) {
	dist := c.pose.PR.Sub(c.pose.VP).Len()
	q := c.rotation(pitch, yaw, roll)
	c.pose.VD, c.pose.VU = common.Orthonormalize(q.Rotate(c.pose.VD), q.Rotate(c.pose.VU))
	c.pose.PR = c.pose.VP.Add(c.pose.VD.Mul(dist))
}

func (c *cameraImpl) Rotate(dpitch, dyaw, droll float64, src Source) {
	k := scaleFor(src)
	dpitch, dyaw, droll = dpitch*k, dyaw*k, droll*k

	switch c.mode {
	case ModeFly:
		target := mgl64.Vec3{dpitch, dyaw, droll}
		c.rate = c.rate.Mul(flySmoothing).Add(target.Mul(1 - flySmoothing))
		c.turned = true
		c.turn(c.rate[0], c.rate[1], c.rate[2])
	case ModeWalk:
		if dpitch != 0 {
			d := c.pose.VD.Mul(dpitch * walkFraction * c.StepDistance())
			c.pose.VP = c.pose.VP.Add(d)
			c.pose.PR = c.pose.PR.Add(d)
		}
		c.turn(0, dyaw, droll)
	default:
		c.orbit(dpitch, dyaw, droll)
	}
}

func (c *cameraImpl) FlyForward(amount float64) {
	step := amount * c.speed * c.StepDistance()
	if c.mode == ModeInspect {
		dist := c.pose.PR.Sub(c.pose.VP).Len()
		minDist := c.diagonal * 1e-3
		nd := math.Max(dist-step, minDist)
		c.pose.VP = c.pose.PR.Sub(c.pose.VD.Mul(nd))
		return
	}
	d := c.pose.VD.Mul(step)
	c.pose.VP = c.pose.VP.Add(d)
	c.pose.PR = c.pose.PR.Add(d)
}

func (c *cameraImpl) Speed() float64 { return c.speed }

func (c *cameraImpl) SetSpeed(s float64) {
	if s > 0 {
		c.speed = s
	}
}

func (c *cameraImpl) SetEyeSeparation(sep float64) {
	if sep >= 0 {
		c.pose.EyeSep = sep
	}
}

func (c *cameraImpl) SetSceneDiagonal(d float64) {
	if d > 0 {
		c.diagonal = d
	}
}

func (c *cameraImpl) SceneDiagonal() float64 { return c.diagonal }

func (c *cameraImpl) Autospin() Axis { return c.spinAxis }

func (c *cameraImpl) SetAutospin(a Axis) { c.spinAxis = a }

func (c *cameraImpl) ToggleAutospin(a Axis) {
	if c.spinAxis == a {
		c.spinAxis = AxisNone
		return
	}
	c.spinAxis = a
}

func (c *cameraImpl) AutospinStep() float64 { return c.spinStep }

func (c *cameraImpl) SetAutopilot(p PathPlayer) {
	c.pilot = p
	c.piloting = p != nil
}

func (c *cameraImpl) Autopilot() bool { return c.piloting }

func (c *cameraImpl) SetAutopilotEnabled(on bool) {
	c.piloting = on && c.pilot != nil
}

func (c *cameraImpl) SetRecorder(r PathRecorder) { c.recorder = r }

func (c *cameraImpl) Recording() bool { return c.recorder != nil }

func (c *cameraImpl) SetPreset(slot int, p Pose) {
	c.presets[slot] = p.normalized()
}

func (c *cameraImpl) GoPreset(slot int) bool {
	p, ok := c.presets[slot]
	if !ok {
		return false
	}
	c.pose = p
	c.rate = mgl64.Vec3{}
	return true
}

func (c *cameraImpl) Update() {
	if c.piloting {
		c.replay()
	} else {
		c.spin()
		c.coast()
	}
	c.turned = false

	if c.recorder != nil {
		if err := c.recorder.Record(c.pose); err != nil {
			common.Logger().Warn("path recording stopped", "error", err)
			c.recorder = nil
		}
	}
}

func (c *cameraImpl) replay() {
	rec, err := c.pilot.Next()
	if err != nil {
		common.Logger().Info("autopilot off", "reason", err)
		c.piloting = false
		return
	}
	c.pose.VP = rec.VP
	c.pose.VD, c.pose.VU = common.Orthonormalize(rec.VD, rec.VU)
}

func (c *cameraImpl) spin() {
	switch c.spinAxis {
	case AxisX:
		c.orbit(c.spinStep, 0, 0)
	case AxisY:
		c.orbit(0, c.spinStep, 0)
	case AxisZ:
		c.orbit(0, 0, c.spinStep)
	}
}

// coast keeps turning a fly-mode camera after input stops, decaying the rate toward rest.
func (c *cameraImpl) coast() {
	if c.mode != ModeFly || c.turned || c.rate.Len() == 0 {
		return
	}
	c.rate = c.rate.Mul(flySmoothing)
	if c.rate.Len() < flyRest {
		c.rate = mgl64.Vec3{}
		return
	}
	c.turn(c.rate[0], c.rate[1], c.rate[2])
}
