package engine

import (
	"time"
)

// FadeState is a state of the exit fade machine.
type FadeState int

const (
	// FadeIn darkens the first frames and clears toward idle.
	FadeIn FadeState = iota
	// FadeIdle draws no overlay.
	FadeIdle
	// FadeOut darkens toward black after an exit request.
	FadeOut
	// FadeDone is terminal; the engine stops after the frame that reached it.
	FadeDone
)

func (s FadeState) String() string {
	switch s {
	case FadeIn:
		return "fade-in"
	case FadeIdle:
		return "idle"
	case FadeOut:
		return "fading-out"
	case FadeDone:
		return "terminated"
	}
	return "unknown"
}

// fader drives the black overlay of startup and exit against wall-clock time.
type fader struct {
	duration time.Duration
	state    FadeState
	start    time.Time
}

func newFader(d time.Duration, now time.Time) *fader {
	f := &fader{duration: d, state: FadeIn, start: now}
	if d <= 0 {
		f.state = FadeIdle
	}
	return f
}

// Out requests the exit fade. Repeated requests do not restart it.
func (f *fader) Out(now time.Time) {
	if f.state == FadeOut || f.state == FadeDone {
		return
	}
	if f.duration <= 0 {
		f.state = FadeDone
		return
	}
	f.state = FadeOut
	f.start = now
}

// Step advances the machine and returns the overlay opacity in [0, 1].
func (f *fader) Step(now time.Time) float32 {
	t := 1.0
	if f.duration > 0 {
		t = float64(now.Sub(f.start)) / float64(f.duration)
	}
	switch f.state {
	case FadeIn:
		if t >= 1 {
			f.state = FadeIdle
			return 0
		}
		return float32(1 - max(t, 0))
	case FadeOut:
		if t >= 1 {
			f.state = FadeDone
			return 1
		}
		return float32(max(t, 0))
	case FadeDone:
		return 1
	}
	return 0
}

func (f *fader) State() FadeState { return f.state }
