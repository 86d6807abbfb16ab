package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFaderSequence(t *testing.T) {
	t0 := time.Unix(100, 0)
	f := newFader(time.Second, t0)
	assert.Equal(t, FadeIn, f.State())

	assert.InDelta(t, 1, f.Step(t0), 1e-6)
	assert.InDelta(t, 0.75, f.Step(t0.Add(250*time.Millisecond)), 1e-6)
	assert.Equal(t, float32(0), f.Step(t0.Add(time.Second)))
	assert.Equal(t, FadeIdle, f.State())
	assert.Equal(t, float32(0), f.Step(t0.Add(5*time.Second)))

	out := t0.Add(10 * time.Second)
	f.Out(out)
	assert.Equal(t, FadeOut, f.State())
	assert.InDelta(t, 0.5, f.Step(out.Add(500*time.Millisecond)), 1e-6)

	// a second request keeps the first start
	f.Out(out.Add(600 * time.Millisecond))
	assert.InDelta(t, 0.7, f.Step(out.Add(700*time.Millisecond)), 1e-6)

	assert.Equal(t, float32(1), f.Step(out.Add(time.Second)))
	assert.Equal(t, FadeDone, f.State())
	f.Out(out.Add(2 * time.Second))
	assert.Equal(t, FadeDone, f.State())
}

func TestFaderZeroDuration(t *testing.T) {
	now := time.Unix(0, 0)
	f := newFader(0, now)
	assert.Equal(t, FadeIdle, f.State())
	assert.Equal(t, float32(0), f.Step(now))
	f.Out(now)
	assert.Equal(t, FadeDone, f.State())
	assert.Equal(t, float32(1), f.Step(now))
}

func TestFadeStateString(t *testing.T) {
	assert.Equal(t, "fading-out", FadeOut.String())
	assert.Equal(t, "terminated", FadeDone.String())
}
