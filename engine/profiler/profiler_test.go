package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }))

	for range 49 {
		now = now.Add(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.Last().FPS)

	now = now.Add(20 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 50, p.Last().FPS, 1e-6)
	assert.Greater(t, p.Last().SysMB, 0.0)
}

func TestTickIgnoresStalledClock(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(0), WithClock(func() time.Time { return now }))
	assert.False(t, p.Tick())
	now = now.Add(time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 2000, p.Last().FPS, 1e-6)
}
