// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Samples    int // MSAA samples, 0 for none
}

// DefaultSamples is the MSAA sample count used when Config.Samples is 0.
const DefaultSamples = 4

type glAttr struct {
	attr  sdl.GLattr
	value int
}

// contextAttrs request a 4.1 core profile, the newest available on macOS.
var contextAttrs = []glAttr{
	{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
	{sdl.GL_CONTEXT_MINOR_VERSION, 1},
	{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	{sdl.GL_DOUBLEBUFFER, 1},
	{sdl.GL_DEPTH_SIZE, 24},
}

// Window wraps SDL2 window and OpenGL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	samples   int
	log       *zap.Logger
}

// New creates a window with an OpenGL context. Multisampling is requested
// first; when the driver refuses it the window is created without.
func New(cfg Config) (*Window, error) {
	w := &Window{config: cfg, log: logger.Named("window")}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	for _, a := range contextAttrs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("SDL_GL_SetAttribute(%d): %w", a.attr, err)
		}
	}

	err := w.create(cfg, cfg.Samples)
	if err != nil {
		w.log.Warn("multisampled window unavailable, retrying without MSAA",
			zap.Int("samples", cfg.Samples), zap.Error(err))
		err = w.create(cfg, 0)
	}
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	dw, dh := w.GetDrawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Int("samples", w.samples),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// create makes the SDL window and its context with the given sample count.
func (w *Window) create(cfg Config, samples int) error {
	buffers := 0
	if samples > 0 {
		buffers = 1
	}
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, buffers)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, samples)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		return fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}
	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	w.sdlWindow, w.glContext, w.samples = win, ctx, samples
	return nil
}

// Samples returns the MSAA sample count of the created context.
func (w *Window) Samples() int {
	return w.samples
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	w.log.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// GetSize returns the window size in screen coordinates, the space pointer
// events are reported in.
func (w *Window) GetSize() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// GetDrawableSize returns the size of the GL drawable in pixels, which
// differs from GetSize on high-DPI displays.
func (w *Window) GetDrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
