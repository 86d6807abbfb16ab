// oxyvis - interactive stereo scene viewer
//
// Controls:
//
//	Arrows        - Rotate (Ctrl: translate)
//	Mouse drag    - Rotate (left), translate (right)
//	Shift+click   - Pick and drag a handle; scroll moves it in depth
//	Scroll        - Fly forward/back
//	h, Home       - Home view
//	0-9           - Go to preset (Ctrl: store preset)
//	x / W         - Toggle fly / walk mode
//	X / Y / Z     - Toggle autospin
//	a             - Toggle autopilot
//	p             - Save the view file
//	Q, Shift+Esc  - Quit
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/config"
	"github.com/Carmen-Shannon/oxy-vis/engine"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
	"github.com/spf13/cobra"
)

var (
	configPath string
	stereo     string
	deviceName string
	listenAddr string
	wsAddr     string
	viewFile   string
	autopilot  string
	recordPath string
	headless   int
	logLevel   string
	noDemo     bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "oxyvis",
		Short: "Interactive stereo scene viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cfg)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	cmd.Flags().StringVar(&stereo, "stereo", "", "Stereo mode (mono, active, dual, trio, anaglyph, interleaved, warped, fisheye)")
	cmd.Flags().StringVar(&deviceName, "device", "", "Display driver for delegated stereo modes")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "Enable the command bridge on this TCP address")
	cmd.Flags().StringVar(&wsAddr, "ws", "", "Enable the command bridge on this WebSocket address")
	cmd.Flags().StringVar(&viewFile, "view", "", "View file to load, watch and save")
	cmd.Flags().StringVar(&autopilot, "autopilot", "", "Camera path to replay")
	cmd.Flags().StringVar(&recordPath, "record", "", "Record the camera path to this file")
	cmd.Flags().IntVar(&headless, "headless", 0, "Render N frames without a window and exit")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&noDemo, "no-demo", false, "Start with an empty scene")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("stereo") {
		cfg.Display.Stereo = stereo
	}
	if flags.Changed("device") {
		cfg.Device.Name = deviceName
	}
	if flags.Changed("listen") {
		cfg.Bridge.Enabled = true
		cfg.Bridge.TCP = listenAddr
	}
	if flags.Changed("ws") {
		cfg.Bridge.Enabled = true
		cfg.Bridge.WebSocket = wsAddr
	}
	if flags.Changed("view") {
		cfg.Camera.ViewFile = viewFile
		cfg.Camera.WatchView = true
	}
	if flags.Changed("autopilot") {
		cfg.Camera.Autopilot = autopilot
	}
	if flags.Changed("record") {
		cfg.Camera.Record = recordPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	warnings, err := cfg.Validate()
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	for _, w := range warnings {
		common.Logger().Warn("config", "warning", w)
	}
	return cfg, err
}

func run(cfg config.Config) error {
	opts := cfg.EngineOptions()
	if headless > 0 {
		opts = append(opts, engine.WithBackend(renderer.NewHeadlessBackend(
			renderer.WithWindowSize(cfg.Display.Width, cfg.Display.Height),
		)))
	} else {
		w, err := window.NewWindow(cfg.WindowOptions()...)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithWindow(w))
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			common.Logger().Warn("shutdown", "error", err)
		}
	}()

	ctx := eng.Context()
	if !noDemo {
		if err := demoScene(ctx.Store); err != nil {
			return err
		}
		ctx.Lock.Lock()
		lo, hi, _ := ctx.Store.Bounds()
		ctx.Camera.Frame(lo, hi)
		ctx.Lock.Unlock()
	}
	for _, l := range eng.Listeners() {
		common.Logger().Info("bridge listening", "addr", l.Addr())
	}

	if headless > 0 {
		start := time.Now()
		n := eng.RunFrames(headless)
		elapsed := time.Since(start)
		fmt.Printf("rendered %d frames in %v (%.1f fps)\n", n, elapsed, float64(n)/elapsed.Seconds())
		return nil
	}
	eng.Run()
	return nil
}
