// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Seek    SeekConfig    `yaml:"seek"`
	Picking PickingConfig `yaml:"picking"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"` // MSAA samples, 0 for the default
}

// RenderConfig holds scene building and frame scheduling settings.
type RenderConfig struct {
	TargetFPS           int     `yaml:"target_fps"`
	Adaptive            bool    `yaml:"adaptive"`
	CameraMoveThreshold float32 `yaml:"camera_move_threshold"`

	// Segment count above which instancing is preferred.
	PrimitiveStrategyThreshold int    `yaml:"primitive_strategy_threshold"`
	Strategy                   string `yaml:"strategy"` // auto, batched or instanced

	ArcResolution  float64 `yaml:"arc_resolution"`
	InstanceRadius float32 `yaml:"instance_radius"`
	ShowBounds     bool    `yaml:"show_bounds"`

	// Directory frame captures are written to; empty for the working directory.
	CaptureDir string `yaml:"capture_dir"`
}

// SeekConfig holds scrubbing timing in milliseconds.
type SeekConfig struct {
	RapidSeekThresholdMs int `yaml:"rapid_seek_threshold_ms"`
	DebounceDelayMs      int `yaml:"debounce_delay_ms"`
}

// RapidThreshold returns the rapid seek threshold as a duration.
func (s SeekConfig) RapidThreshold() time.Duration {
	return time.Duration(s.RapidSeekThresholdMs) * time.Millisecond
}

// DebounceDelay returns the debounce delay as a duration.
func (s SeekConfig) DebounceDelay() time.Duration {
	return time.Duration(s.DebounceDelayMs) * time.Millisecond
}

// PickingConfig holds point picking settings.
type PickingConfig struct {
	PixelPickRadius float32 `yaml:"pixel_pick_radius"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "pathscope",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		Render: RenderConfig{
			TargetFPS:                  30,
			Adaptive:                   true,
			CameraMoveThreshold:        0.01,
			PrimitiveStrategyThreshold: 5000,
			Strategy:                   "auto",
			ArcResolution:              1.0,
			InstanceRadius:             0.05,
		},
		Seek: SeekConfig{
			RapidSeekThresholdMs: 50,
			DebounceDelayMs:      150,
		},
		Picking: PickingConfig{
			PixelPickRadius: 8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate clamps numeric settings into their supported ranges and rejects
// settings that cannot be repaired.
func (c *Config) Validate() error {
	c.Render.TargetFPS = clamp(c.Render.TargetFPS, 1, 60)
	if c.Render.CameraMoveThreshold < 0 {
		c.Render.CameraMoveThreshold = 0
	}
	if c.Render.PrimitiveStrategyThreshold < 0 {
		c.Render.PrimitiveStrategyThreshold = 0
	}
	if c.Render.ArcResolution <= 0 {
		c.Render.ArcResolution = Default().Render.ArcResolution
	}
	if c.Render.InstanceRadius <= 0 {
		c.Render.InstanceRadius = Default().Render.InstanceRadius
	}
	if c.Seek.RapidSeekThresholdMs < 0 {
		c.Seek.RapidSeekThresholdMs = 0
	}
	if c.Seek.DebounceDelayMs < 0 {
		c.Seek.DebounceDelayMs = 0
	}
	if c.Window.Samples < 0 {
		c.Window.Samples = 0
	}
	if c.Picking.PixelPickRadius <= 0 {
		c.Picking.PixelPickRadius = Default().Picking.PixelPickRadius
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}

	switch strings.ToLower(c.Render.Strategy) {
	case "", "auto", "batched", "instanced":
	default:
		return fmt.Errorf("unknown render strategy %q", c.Render.Strategy)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
