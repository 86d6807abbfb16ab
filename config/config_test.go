package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[display]
width = 1280
height = 720
stereo = "dual"
fade_seconds = 1.5
clear = [0.1, 0.2, 0.3, 1.0]

[[panels]]
rect = [0.0, 0.0, 0.5, 1.0]

[[panels]]
rect = [0.5, 0.0, 1.0, 1.0]
own_camera = true

[camera]
eye_separation = 0.25
view_file = "scene.view"

[bridge]
enabled = true
websocket = "127.0.0.1:7778"

[device]
name = "anaglyph"
params = { glasses = "green-magenta" }

[log]
level = "debug"
`

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Display.Width)
	assert.Equal(t, "dual", cfg.Display.Stereo)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Display.Clear)
	assert.Equal(t, "oxy-vis", cfg.Display.Title)
	assert.Equal(t, 45.0, cfg.Camera.Aperture)
	assert.Equal(t, 0.25, cfg.Camera.EyeSeparation)
	assert.Equal(t, "127.0.0.1:7777", cfg.Bridge.TCP)
	assert.Equal(t, "127.0.0.1:7778", cfg.Bridge.WebSocket)
	assert.Equal(t, "green-magenta", cfg.Device.Params["glasses"])
	require.Len(t, cfg.Panels, 2)
	assert.True(t, cfg.Panels[1].OwnCamera)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, compositor.DualStereo, cfg.StereoMode())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[display]\nwidht = 3\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxyvis.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 720, cfg.Display.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateRepairs(t *testing.T) {
	cfg := Default()
	cfg.Display.Width = 0
	cfg.Display.Stereo = "holographic"
	cfg.Display.Projection = "fish"
	cfg.Display.NearFarExpand = -1
	cfg.Display.FadeSeconds = -2
	cfg.Panels = []Panel{{Rect: [4]float64{0, 0, 1, 1}}, {Rect: [4]float64{0.5, 0, 0.2, 1}}}
	cfg.Log.Level = "loud"

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 7)
	assert.Equal(t, Default().Display.Width, cfg.Display.Width)
	assert.Equal(t, "mono", cfg.Display.Stereo)
	assert.Equal(t, "perspective", cfg.Display.Projection)
	assert.Equal(t, 1.0, cfg.Display.NearFarExpand)
	assert.Zero(t, cfg.Display.FadeSeconds)
	assert.Len(t, cfg.Panels, 1)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestValidateOrthographicStereo(t *testing.T) {
	cfg := Default()
	cfg.Display.Stereo = "dual"
	cfg.Display.Projection = "ortho"

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "orthographic")
	assert.Equal(t, "dual", cfg.Display.Stereo)
	assert.Equal(t, "perspective", cfg.Display.Projection)
	assert.Equal(t, camera.Perspective, camera.NewCamera(cfg.CameraOptions()...).Projection())

	cfg = Default()
	cfg.Display.Projection = "orthographic"
	warnings, err = cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "orthographic", cfg.Display.Projection)
}

func TestValidateUnknownDeviceIsFatal(t *testing.T) {
	cfg := Default()
	cfg.Device.Name = "hologram"
	_, err := cfg.Validate()
	assert.ErrorIs(t, err, device.ErrUnknownDevice)
}

func TestNewCompositorPanels(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	comp := cfg.NewCompositor()
	panels := comp.Panels()
	require.Len(t, panels, 2)
	assert.Nil(t, panels[0].Camera)
	assert.NotNil(t, panels[1].Camera)
	assert.Equal(t, compositor.DualStereo, comp.Mode())
	assert.Equal(t, 0.25, panels[1].Camera.Pose().EyeSep)
}

func TestEngineOptionsCount(t *testing.T) {
	cfg := Default()
	base := len(cfg.EngineOptions())

	cfg.Bridge.Enabled = true
	cfg.Camera.ViewFile = "a.view"
	cfg.Camera.Autopilot = "a.path"
	cfg.Camera.Record = "b.path"
	assert.Equal(t, base+4, len(cfg.EngineOptions()))
}
