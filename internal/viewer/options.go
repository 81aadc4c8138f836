package viewer

import (
	"fmt"

	"github.com/Faultbox/pathscope/internal/config"
	"github.com/Faultbox/pathscope/internal/engine/geometry"
	"github.com/Faultbox/pathscope/internal/engine/picking"
	"github.com/Faultbox/pathscope/internal/engine/scheduler"
	"github.com/Faultbox/pathscope/internal/engine/seek"
)

// Options configures a Viewer.
type Options struct {
	Width, Height int

	Geometry  geometry.Policy
	Scheduler scheduler.Config
	Seek      seek.Config

	PixelPickRadius float32
	ShowBounds      bool
}

// DefaultOptions returns the options matching config.Default.
func DefaultOptions() Options {
	return Options{
		Width:           1280,
		Height:          720,
		Geometry:        geometry.DefaultPolicy(),
		Scheduler:       scheduler.DefaultConfig(),
		Seek:            seek.DefaultConfig(),
		PixelPickRadius: picking.DefaultPixelRadius,
	}
}

// OptionsFromConfig maps the loaded configuration onto viewer options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	strategy, err := geometry.ParseStrategy(cfg.Render.Strategy)
	if err != nil {
		return Options{}, fmt.Errorf("render.strategy: %w", err)
	}
	return Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Geometry: geometry.Policy{
			Strategy:          strategy,
			InstanceThreshold: cfg.Render.PrimitiveStrategyThreshold,
			ArcResolution:     cfg.Render.ArcResolution,
			InstanceRadius:    cfg.Render.InstanceRadius,
		},
		Scheduler: scheduler.Config{
			Enabled:             cfg.Render.Adaptive,
			TargetFPS:           cfg.Render.TargetFPS,
			CameraMoveThreshold: cfg.Render.CameraMoveThreshold,
		},
		Seek: seek.Config{
			RapidThreshold: cfg.Seek.RapidThreshold(),
			DebounceDelay:  cfg.Seek.DebounceDelay(),
		},
		PixelPickRadius: cfg.Picking.PixelPickRadius,
		ShowBounds:      cfg.Render.ShowBounds,
	}, nil
}
