package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagFPS        = flag.Int("fps", 0, "Target frame rate (1-60)")
	flagNoAdaptive = flag.Bool("no-adaptive", false, "Render every frame")
	flagStrategy   = flag.String("strategy", "", "Primitive strategy: auto, batched or instanced")
	flagBounds     = flag.Bool("bounds", false, "Draw primitive bounding boxes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFPS > 0 {
		cfg.Render.TargetFPS = *flagFPS
	}
	if *flagNoAdaptive {
		cfg.Render.Adaptive = false
	}
	if *flagStrategy != "" {
		cfg.Render.Strategy = *flagStrategy
	}
	if *flagBounds {
		cfg.Render.ShowBounds = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
