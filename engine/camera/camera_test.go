package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

// assertVecNear compares two vectors component by component within delta.
func assertVecNear(t *testing.T, want, got mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}

func assertOrthonormal(t *testing.T, p Pose) {
	t.Helper()
	assert.InDelta(t, 1, p.VD.Len(), tol)
	assert.InDelta(t, 1, p.VU.Len(), tol)
	assert.InDelta(t, 0, p.VD.Dot(p.VU), tol)
}

func TestNavigationKeepsBasisOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, mode := range []Mode{ModeInspect, ModeFly, ModeWalk} {
		t.Run(mode.String(), func(t *testing.T) {
			c := NewCamera(WithMode(mode), WithSceneDiagonal(10))
			for range 500 {
				src := Source(rng.Intn(2))
				if rng.Intn(3) == 0 {
					c.Translate(rng.Float64()*4-2, rng.Float64()*4-2, src)
				} else {
					c.Rotate(rng.Float64()*90-45, rng.Float64()*90-45, rng.Float64()*90-45, src)
				}
				assertOrthonormal(t, c.Pose())
				c.Update()
				assertOrthonormal(t, c.Pose())
			}
		})
	}
}

func TestSetPoseOrthonormalizes(t *testing.T) {
	c := NewCamera()
	c.SetPose(Pose{VP: mgl64.Vec3{1, 2, 3}, VD: mgl64.Vec3{0, 0, -3}, VU: mgl64.Vec3{0, 2, 1}})
	p := c.Pose()
	assertOrthonormal(t, p)
	assertVecNear(t, mgl64.Vec3{0, 0, -1}, p.VD, tol)
	assertVecNear(t, mgl64.Vec3{0, 1, 0}, p.VU, tol)
}

func TestInspectOrbitKeepsDistanceToPivot(t *testing.T) {
	c := NewCamera()
	before := c.Pose().VP.Sub(c.Pose().PR).Len()
	c.Rotate(0, 90, 0, SourceKeyboard)
	p := c.Pose()
	assert.InDelta(t, before, p.VP.Sub(p.PR).Len(), 1e-9)
	// a quarter turn about +y moves the camera from +z to +x
	assertVecNear(t, mgl64.Vec3{10, 0, 0}, p.VP, 1e-9, "vp=%v", p.VP)
	assertVecNear(t, mgl64.Vec3{-1, 0, 0}, p.VD, 1e-9, "vd=%v", p.VD)
}

func TestPointerDeltasAreHalved(t *testing.T) {
	kb := NewCamera()
	ptr := NewCamera()
	kb.Rotate(0, 10, 0, SourceKeyboard)
	ptr.Rotate(0, 20, 0, SourcePointer)
	assertVecNear(t, ptr.Pose().VP, kb.Pose().VP, 1e-9)

	kb.Translate(1, 0, SourceKeyboard)
	ptr.Translate(2, 0, SourcePointer)
	assertVecNear(t, ptr.Pose().VP, kb.Pose().VP, 1e-9)
}

func TestTranslateMovesPivotOnlyInPerspective(t *testing.T) {
	c := NewCamera(WithTranslateDistance(1))
	c.Translate(1, 2, SourceKeyboard)
	p := c.Pose()
	assertVecNear(t, mgl64.Vec3{1, 2, 10}, p.VP, 1e-9, "vp=%v", p.VP)
	assertVecNear(t, mgl64.Vec3{1, 2, 0}, p.PR, 1e-9, "pr=%v", p.PR)

	o := NewCamera(WithTranslateDistance(1), WithProjection(Orthographic))
	o.Translate(1, 0, SourceKeyboard)
	assert.Equal(t, mgl64.Vec3{}, o.Pose().PR)
}

func TestTranslateStepFollowsDiagonal(t *testing.T) {
	c := NewCamera(WithSceneDiagonal(50))
	assert.InDelta(t, 50*stepFraction, c.StepDistance(), 1e-12)
	c.SetSceneDiagonal(100)
	assert.InDelta(t, 100*stepFraction, c.StepDistance(), 1e-12)
}

func TestFlySmoothing(t *testing.T) {
	c := NewCamera(WithMode(ModeFly))
	c.Rotate(0, 10, 0, SourceKeyboard)
	// first input turns by 0.1 of the requested rate
	angle := math.Acos(mgl64.Clamp(c.Pose().VD.Dot(mgl64.Vec3{0, 0, -1}), -1, 1))
	assert.InDelta(t, mgl64.DegToRad(1), angle, 1e-9)
	assertVecNear(t, mgl64.Vec3{0, 0, 10}, c.Pose().VP, 1e-12)

	// with no further input the camera keeps turning and slows down
	c.Update()
	prev := c.Pose().VD
	c.Update()
	first := math.Acos(mgl64.Clamp(c.Pose().VD.Dot(prev), -1, 1))
	prev = c.Pose().VD
	c.Update()
	second := math.Acos(mgl64.Clamp(c.Pose().VD.Dot(prev), -1, 1))
	assert.Greater(t, first, 0.0)
	assert.Less(t, second, first)
}

func TestWalkPitchMovesForward(t *testing.T) {
	c := NewCamera(WithMode(ModeWalk), WithTranslateDistance(1))
	c.Rotate(10, 0, 0, SourceKeyboard)
	p := c.Pose()
	assertVecNear(t, mgl64.Vec3{0, 0, -1}, p.VD, 1e-12)
	assert.InDelta(t, 10-10*walkFraction, p.VP.Z(), 1e-9)
}

func TestFlyForward(t *testing.T) {
	c := NewCamera(WithTranslateDistance(1), WithSpeed(2))
	c.FlyForward(1)
	assert.InDelta(t, 8, c.Pose().VP.Z(), 1e-9)
	assert.Equal(t, mgl64.Vec3{}, c.Pose().PR)

	c.FlyForward(100)
	assert.Greater(t, c.Pose().VP.Z(), 0.0)

	c.SetMode(ModeFly)
	before := c.Pose()
	c.FlyForward(1)
	after := c.Pose()
	assert.InDelta(t, before.VP.Z()-2, after.VP.Z(), 1e-9)
	assert.InDelta(t, before.PR.Z()-2, after.PR.Z(), 1e-9)
}

func TestAutospinFixedPerFrameStep(t *testing.T) {
	c := NewCamera(WithAutospin(AxisX, 0.5))
	var steps []float64
	prev := c.Pose().VD
	for range 100 {
		c.Update()
		cur := c.Pose().VD
		steps = append(steps, math.Acos(mgl64.Clamp(prev.Dot(cur), -1, 1)))
		prev = cur
	}
	for _, s := range steps {
		assert.InDelta(t, mgl64.DegToRad(0.5), s, 1e-7)
	}
}

func TestAutospinExclusive(t *testing.T) {
	c := NewCamera()
	c.ToggleAutospin(AxisX)
	assert.Equal(t, AxisX, c.Autospin())
	c.ToggleAutospin(AxisY)
	assert.Equal(t, AxisY, c.Autospin())
	c.ToggleAutospin(AxisY)
	assert.Equal(t, AxisNone, c.Autospin())
}

func TestGoHomeAndPresets(t *testing.T) {
	c := NewCamera()
	home := c.Pose()
	c.Rotate(30, 20, 10, SourceKeyboard)
	c.SetPreset(1, c.Pose())
	moved := c.Pose()
	c.GoHome()
	assert.Equal(t, home, c.Pose())
	require.True(t, c.GoPreset(1))
	assertVecNear(t, c.Pose().VP, moved.VP, 1e-12)
	assertVecNear(t, c.Pose().VD, moved.VD, 1e-12)
	assert.False(t, c.GoPreset(2))
}

func TestSetModeInspectRecentresPivot(t *testing.T) {
	c := NewCamera(WithMode(ModeFly))
	c.Rotate(0, 90, 0, SourceKeyboard)
	c.SetMode(ModeInspect)
	p := c.Pose()
	ahead := p.PR.Sub(p.VP).Normalize()
	assertVecNear(t, p.VD, ahead, 1e-9)
}

func TestFrame(t *testing.T) {
	c := NewCamera()
	c.Frame(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{3, 1, 1})
	p := c.Pose()
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, p.PR)
	assertVecNear(t, p.VD, p.PR.Sub(p.VP).Normalize(), 1e-9)
	assert.InDelta(t, mgl64.Vec3{4, 2, 2}.Len(), c.SceneDiagonal(), 1e-9)
	assert.Equal(t, p, c.Home())
}

func TestParseProjection(t *testing.T) {
	p, err := ParseProjection("orthographic")
	require.NoError(t, err)
	assert.Equal(t, Orthographic, p)
	_, err = ParseProjection("fish")
	assert.Error(t, err)
}
