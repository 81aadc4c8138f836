// Package app runs the interactive viewer: SDL window, GL renderer, input
// and file watching around a viewer.Viewer.
package app

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/config"
	"github.com/Faultbox/pathscope/internal/engine/capture"
	"github.com/Faultbox/pathscope/internal/engine/culling"
	"github.com/Faultbox/pathscope/internal/engine/events"
	"github.com/Faultbox/pathscope/internal/engine/input"
	"github.com/Faultbox/pathscope/internal/engine/renderer"
	"github.com/Faultbox/pathscope/internal/engine/scheduler"
	"github.com/Faultbox/pathscope/internal/engine/window"
	"github.com/Faultbox/pathscope/internal/logger"
	"github.com/Faultbox/pathscope/internal/viewer"
)

// idleSleep is how long the loop sleeps after a skipped frame.
const idleSleep = 2 * time.Millisecond

// App is the windowed viewer.
type App struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	viewer   *viewer.Viewer
	watcher  *Watcher
	capture  *capture.Capture

	file    string
	title   string
	running bool
	log     *zap.Logger
}

// New creates the window, renderer and viewer. file may be empty.
func New(cfg *config.Config, file string) (*App, error) {
	a := &App{
		cfg:     cfg,
		file:    file,
		capture: capture.New(cfg.Render.CaptureDir, "pathscope"),
		log:     logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	opts, err := viewer.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer AFTER window, since the GL context must exist
	a.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		ShowBounds: cfg.Render.ShowBounds,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.viewer = viewer.New(opts, a.renderer)
	a.input = input.New(a.viewer.Bus())
	a.viewer.Bus().Subscribe(events.KindResize, func(events.Event) { a.resize() })
	a.resize()

	if file != "" {
		// A broken file still opens the window; the error is shown in the title.
		_ = a.viewer.LoadFile(file)
		a.updateTitle()

		if a.watcher, err = Watch(file); err != nil {
			a.log.Warn("file watching disabled", zap.Error(err))
		}
	}

	a.log.Info("viewer initialized")
	return a, nil
}

// Run runs the loop until the window is closed.
func (a *App) Run() error {
	a.running = true
	start := time.Now()
	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")
	for a.running {
		a.input.Update()

		if a.watcher != nil && a.watcher.Poll() {
			a.viewer.Bus().Publish(events.FileChanged{Path: a.watcher.Path()})
		}

		frame := a.viewer.Tick(time.Since(start))
		if a.viewer.Session.Quit {
			a.running = false
			break
		}
		a.updateTitle()

		if !frame.Render {
			time.Sleep(idleSleep)
			continue
		}
		a.render(frame)
		if frame.Capture {
			a.saveCapture()
		}
		a.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", fpsFields(frames, a.viewer.Scheduler().Stats(), frame.Culled)...)
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// fpsFields describes one second of the loop.
func fpsFields(frames int, st scheduler.Stats, culled culling.Stats) []zap.Field {
	return []zap.Field{
		zap.Int("count", frames),
		zap.Uint64("rendered", st.Rendered),
		zap.Uint64("skipped", st.Skipped),
		zap.Uint64("overrides", st.Overrides),
		zap.Int("visible", culled.Visible),
		zap.Int("culled", culled.Culled),
	}
}

func (a *App) render(f viewer.Frame) {
	a.renderer.SetShowBounds(f.ShowBounds)
	a.renderer.Begin()
	a.renderer.Draw(f.Graph, f.Camera)
	if t := f.Tooltip; t != nil {
		a.renderer.DrawTooltip(t.Image, t.At.X, t.At.Y)
	}
	a.renderer.End()
}

func (a *App) saveCapture() {
	w, h := a.window.GetDrawableSize()
	name, err := a.capture.Save(a.renderer.ReadPixels(w, h), w, h)
	if err != nil {
		a.log.Warn("frame capture failed", zap.Error(err))
		return
	}
	a.log.Info("frame captured", zap.String("file", name))
}

func (a *App) resize() {
	w, h := a.window.GetSize()
	dw, dh := a.window.GetDrawableSize()
	a.renderer.Resize(w, h, dw, dh)
	a.viewer.Resize(w, h)
}

func (a *App) updateTitle() {
	s := &a.viewer.Session
	title := a.cfg.Window.Title
	if s.Filename != "" {
		title += " - " + filepath.Base(s.Filename)
	}
	switch {
	case s.Error != nil:
		title += " [error: " + s.Error.Error() + "]"
	case s.Position != viewer.AllSegments:
		title += fmt.Sprintf(" [%d/%d]", s.Position, s.Model.Len())
	}
	if title != a.title {
		a.title = title
		a.window.SetTitle(title)
	}
}

// Close releases every resource in reverse creation order.
func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("close watcher", zap.Error(err))
		}
	}
	if a.viewer != nil {
		a.viewer.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	a.log.Info("viewer closed")
}
