package camera

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadViewPartial(t *testing.T) {
	in := "vp 1 2 3\n# comment\nunknown 9 9 9\naperture 30\n"
	p, err := ReadView(strings.NewReader(in), DefaultPose)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, p.VP)
	assert.Equal(t, 30.0, p.Aperture)
	assert.Equal(t, DefaultPose.VD, p.VD)
	assert.Equal(t, DefaultPose.Focal, p.Focal)
}

func TestReadViewErrors(t *testing.T) {
	_, err := ReadView(strings.NewReader("vp 1 2\n"), DefaultPose)
	assert.Error(t, err)
	_, err = ReadView(strings.NewReader("focallength abc\n"), DefaultPose)
	assert.Error(t, err)
}

func TestViewRoundTrip(t *testing.T) {
	want := Pose{
		VP: mgl64.Vec3{1.5, -2, 3}, VD: mgl64.Vec3{0, -1, 0}, VU: mgl64.Vec3{0, 0, 1},
		PR: mgl64.Vec3{1.5, -10, 3}, Focal: 8, Aperture: 40, EyeSep: 0.25,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteView(&buf, want))
	got, err := ReadView(&buf, DefaultPose)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestViewFileSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.txt")
	src := NewCamera()
	src.Rotate(10, 20, 0, SourceKeyboard)
	require.NoError(t, SaveViewFile(src, path))

	dst := NewCamera()
	require.NoError(t, LoadViewFile(dst, path))
	assertVecNear(t, src.Pose().VP, dst.Pose().VP, 1e-12)
	assert.Equal(t, dst.Pose(), dst.Home())

	assert.Error(t, LoadViewFile(dst, filepath.Join(t.TempDir(), "missing")))
}

func TestViewWatcherNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.txt")
	require.NoError(t, os.WriteFile(path, []byte("vp 0 0 1\n"), 0o644))

	w, err := NewViewWatcher(path)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("vp 0 0 2\n"), 0o644))
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
	assert.NoError(t, w.Close())
}
