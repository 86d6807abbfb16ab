// Package config loads the viewer configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/device"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// Config is the decoded configuration file. Absent keys keep the values of Default.
type Config struct {
	Display Display `toml:"display"`
	Panels  []Panel `toml:"panels"`
	Camera  Camera  `toml:"camera"`
	Bridge  Bridge  `toml:"bridge"`
	Device  Device  `toml:"device"`
	Log     Log     `toml:"log"`
}

// Display configures the window and the composition of its frames.
type Display struct {
	Width         int        `toml:"width"`
	Height        int        `toml:"height"`
	Title         string     `toml:"title"`
	Fullscreen    bool       `toml:"fullscreen"`
	Stereo        string     `toml:"stereo"`
	Projection    string     `toml:"projection"`
	NearFarExpand float64    `toml:"near_far_expand"`
	FadeSeconds   float64    `toml:"fade_seconds"`
	Clear         [4]float32 `toml:"clear"`
	SwapInterval  int        `toml:"swap_interval"`
	Samples       int        `toml:"samples"`
	FrameLimit    float64    `toml:"frame_limit"`
	Profile       bool       `toml:"profile"`
}

// Panel is one window region given as [x1, y1, x2, y2] in normalized coordinates.
type Panel struct {
	Rect      [4]float64 `toml:"rect"`
	OwnCamera bool       `toml:"own_camera"`
}

// Camera holds the camera defaults and its files.
type Camera struct {
	Aperture          float64 `toml:"aperture"`
	Focal             float64 `toml:"focal_length"`
	EyeSeparation     float64 `toml:"eye_separation"`
	Speed             float64 `toml:"speed"`
	TranslateDistance float64 `toml:"translate_distance"`
	AutospinStep      float64 `toml:"autospin_step"`
	ViewFile          string  `toml:"view_file"`
	WatchView         bool    `toml:"watch_view"`
	Autopilot         string  `toml:"autopilot"`
	Record            string  `toml:"record"`
}

// Bridge configures the command listeners. Empty addresses disable a listener.
type Bridge struct {
	Enabled   bool   `toml:"enabled"`
	TCP       string `toml:"tcp"`
	WebSocket string `toml:"websocket"`
}

// Device selects a display driver for delegated stereo modes.
type Device struct {
	Name   string            `toml:"name"`
	Params map[string]string `toml:"params"`
}

// Log configures the log output.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	return Config{
		Display: Display{
			Width:         1024,
			Height:        768,
			Title:         "oxy-vis",
			Stereo:        "mono",
			Projection:    "perspective",
			NearFarExpand: 1,
			FadeSeconds:   0.5,
			Clear:         [4]float32{0, 0, 0, 1},
			SwapInterval:  1,
		},
		Camera: Camera{
			Aperture:      45,
			Focal:         10,
			EyeSeparation: 0.5,
			Speed:         1,
		},
		Bridge: Bridge{
			TCP: "127.0.0.1:7777",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a configuration file on top of Default.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the configuration
//   - error: an open or decode error
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML on top of Default. Unknown keys are an error.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the configuration
//   - error: a decode error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate repairs unusable values and reports each repair as a warning. The only fatal
// error is a device name no driver is registered under.
//
// Returns:
//   - []string: the warnings
//   - error: an error wrapping device.ErrUnknownDevice
func (c *Config) Validate() ([]string, error) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	def := Default()

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		warn("invalid window size %dx%d, using %dx%d", c.Display.Width, c.Display.Height, def.Display.Width, def.Display.Height)
		c.Display.Width, c.Display.Height = def.Display.Width, def.Display.Height
	}
	if _, err := compositor.ParseStereoMode(c.Display.Stereo); err != nil {
		warn("%v, using mono", err)
		c.Display.Stereo = "mono"
	}
	proj, err := camera.ParseProjection(c.Display.Projection)
	if err != nil {
		warn("%v, using perspective", err)
		c.Display.Projection = "perspective"
		proj = camera.Perspective
	}
	if mode, _ := compositor.ParseStereoMode(c.Display.Stereo); mode.Stereo() && proj == camera.Orthographic {
		warn("orthographic projection cannot be used with %s stereo, using perspective", mode)
		c.Display.Projection = "perspective"
	}
	if c.Display.NearFarExpand <= 0 {
		warn("near_far_expand must be positive, using 1")
		c.Display.NearFarExpand = 1
	}
	if c.Display.FadeSeconds < 0 {
		warn("fade_seconds is negative, fading disabled")
		c.Display.FadeSeconds = 0
	}

	kept := c.Panels[:0]
	for i, p := range c.Panels {
		if !p.rect().Valid() {
			warn("panel %d: invalid rect %v, dropped", i, p.Rect)
			continue
		}
		kept = append(kept, p)
	}
	c.Panels = kept

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		warn("unknown log level %q, using info", c.Log.Level)
		c.Log.Level = "info"
	}

	if c.Device.Name != "" {
		if _, err := device.Lookup(c.Device.Name); err != nil {
			return warnings, fmt.Errorf("config: %w", err)
		}
	}
	return warnings, nil
}

func (p Panel) rect() common.Rect {
	return common.Rect{X1: p.Rect[0], Y1: p.Rect[1], X2: p.Rect[2], Y2: p.Rect[3]}
}

// LogLevel returns the configured slog level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// StereoMode returns the configured stereo mode, defaulting to mono.
func (c Config) StereoMode() compositor.StereoMode {
	m, _ := compositor.ParseStereoMode(c.Display.Stereo)
	return m
}

// CameraOptions returns the camera options of the configuration.
//
// Returns:
//   - []camera.CameraBuilderOption: the options
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	proj, _ := camera.ParseProjection(c.Display.Projection)
	opts := []camera.CameraBuilderOption{
		camera.WithOptics(c.Camera.Focal, c.Camera.Aperture, c.Camera.EyeSeparation),
		camera.WithProjection(proj),
		camera.WithSpeed(c.Camera.Speed),
		camera.WithAutospin(camera.AxisNone, c.Camera.AutospinStep),
	}
	if c.Camera.TranslateDistance > 0 {
		opts = append(opts, camera.WithTranslateDistance(c.Camera.TranslateDistance))
	}
	return opts
}

// NewCompositor builds the compositor of the configuration. Panels with their own camera get
// a camera built from CameraOptions.
//
// Returns:
//   - compositor.Compositor: the compositor
func (c Config) NewCompositor() compositor.Compositor {
	opts := []compositor.CompositorBuilderOption{
		compositor.WithStereoMode(c.StereoMode()),
		compositor.WithNearFarExpand(c.Display.NearFarExpand),
	}
	if len(c.Panels) > 0 {
		panels := make([]compositor.Panel, len(c.Panels))
		for i, p := range c.Panels {
			panels[i] = compositor.Panel{Rect: p.rect(), Active: true}
			if p.OwnCamera {
				panels[i].Camera = camera.NewCamera(c.CameraOptions()...)
			}
		}
		opts = append(opts, compositor.WithPanels(panels...))
	}
	return compositor.NewCompositor(opts...)
}

// WindowOptions returns the window options of the configuration.
//
// Returns:
//   - []window.WindowBuilderOption: the options
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Display.Title),
		window.WithSize(c.Display.Width, c.Display.Height),
		window.WithStereo(c.StereoMode() == compositor.ActiveStereo),
		window.WithSwapInterval(c.Display.SwapInterval),
		window.WithSamples(c.Display.Samples),
		window.WithFullscreen(c.Display.Fullscreen),
	}
}

// EngineOptions returns the engine options of the configuration, including a camera and a
// compositor built from it. Window and backend are left to the caller.
//
// Returns:
//   - []engine.EngineBuilderOption: the options
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	opts := []engine.EngineBuilderOption{
		engine.WithWindowSize(c.Display.Width, c.Display.Height),
		engine.WithCamera(camera.NewCamera(c.CameraOptions()...)),
		engine.WithCompositor(c.NewCompositor()),
		engine.WithClearColour(common.Colour(c.Display.Clear)),
		engine.WithFadeDuration(time.Duration(c.Display.FadeSeconds * float64(time.Second))),
		engine.WithRenderFrameLimit(c.Display.FrameLimit),
		engine.WithProfiling(c.Display.Profile),
		engine.WithDevice(c.Device.Name, device.Options{Params: c.Device.Params}),
	}
	if c.Bridge.Enabled {
		opts = append(opts, engine.WithBridge(c.Bridge.TCP, c.Bridge.WebSocket))
	}
	if c.Camera.ViewFile != "" {
		opts = append(opts, engine.WithViewFile(c.Camera.ViewFile, c.Camera.WatchView))
	}
	if c.Camera.Autopilot != "" {
		opts = append(opts, engine.WithAutopilot(c.Camera.Autopilot))
	}
	if c.Camera.Record != "" {
		opts = append(opts, engine.WithRecordPath(c.Camera.Record))
	}
	return opts
}
