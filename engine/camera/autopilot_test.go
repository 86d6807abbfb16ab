package camera

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecords = `0 0 5  0 1 0  0 0 -1

1 0 5  0 1 0  0 0 -1
`

func TestPathPlayerLoops(t *testing.T) {
	p := NewPathPlayer(strings.NewReader(twoRecords))
	var xs []float64
	for range 5 {
		rec, err := p.Next()
		require.NoError(t, err)
		xs = append(xs, rec.VP.X())
	}
	assert.Equal(t, []float64{0, 1, 0, 1, 0}, xs)
}

func TestPathPlayerEmptyIsExhausted(t *testing.T) {
	_, err := NewPathPlayer(strings.NewReader("\n\n")).Next()
	assert.ErrorIs(t, err, ErrAutopilotExhausted)
}

func TestPathPlayerMalformed(t *testing.T) {
	p := NewPathPlayer(strings.NewReader("0 0 5 0 1 0 0 0 -1\n1 2 3\n"))
	_, err := p.Next()
	require.NoError(t, err)
	_, err = p.Next()
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = NewPathPlayer(strings.NewReader("0 0 x 0 1 0 0 0 -1\n")).Next()
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

type noSeek struct{ io.Reader }

func (noSeek) Seek(int64, int) (int64, error) { return 0, errors.New("not seekable") }

func TestPathPlayerRewindFailure(t *testing.T) {
	p := NewPathPlayer(noSeek{strings.NewReader("0 0 5 0 1 0 0 0 -1\n")})
	_, err := p.Next()
	require.NoError(t, err)
	_, err = p.Next()
	assert.Error(t, err)
}

func TestAutopilotDrivesAndStops(t *testing.T) {
	c := NewCamera()
	c.SetAutopilot(NewPathPlayer(strings.NewReader("3 0 5 0 1 0 0 0 -2\nbad\n")))
	require.True(t, c.Autopilot())

	c.Update()
	p := c.Pose()
	assert.Equal(t, mgl64.Vec3{3, 0, 5}, p.VP)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, p.VD)

	c.Update()
	assert.False(t, c.Autopilot())
	assert.Equal(t, p, c.Pose())

	c.SetAutopilotEnabled(true)
	assert.True(t, c.Autopilot())
	c.SetAutopilot(nil)
	c.SetAutopilotEnabled(true)
	assert.False(t, c.Autopilot())
}

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewCamera(WithAutospin(AxisY, 2))
	c.SetRecorder(NewPathRecorder(&buf))
	var want []Pose
	for range 3 {
		c.Update()
		want = append(want, c.Pose())
	}
	c.SetRecorder(nil)
	assert.False(t, c.Recording())

	p := NewPathPlayer(bytes.NewReader(buf.Bytes()))
	for _, w := range want {
		rec, err := p.Next()
		require.NoError(t, err)
		assertVecNear(t, w.VP, rec.VP, 1e-12)
		assertVecNear(t, w.VD, rec.VD, 1e-12)
		assertVecNear(t, w.VU, rec.VU, 1e-12)
	}
}
