// Package scheduler decides per tick whether a frame should be rendered.
package scheduler

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathscope/internal/engine/camera"
)

// FPS limits.
const (
	MinFPS = 1
	MaxFPS = 60
)

// Config holds scheduler settings.
type Config struct {
	Enabled             bool
	TargetFPS           int
	CameraMoveThreshold float32 // World units of camera travel that force a frame
}

// DefaultConfig returns the default scheduler settings.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		TargetFPS:           30,
		CameraMoveThreshold: 0.01,
	}
}

// Stats counts scheduling decisions.
type Stats struct {
	Rendered  uint64
	Skipped   uint64
	Overrides uint64 // Renders forced inside the frame interval
}

// Adaptive throttles rendering to a target frame rate while letting camera
// motion and user interaction force frames.
type Adaptive struct {
	enabled   bool
	targetFPS int
	interval  time.Duration
	threshold float32

	hasFrame  bool
	lastFrame time.Duration
	lastPos   mgl32.Vec3
	hasPos    bool

	stats Stats
}

// New creates a scheduler from cfg.
func New(cfg Config) *Adaptive {
	a := &Adaptive{enabled: cfg.Enabled, threshold: cfg.CameraMoveThreshold}
	a.SetTargetFPS(cfg.TargetFPS)
	return a
}

// Enable turns throttling on.
func (a *Adaptive) Enable() {
	a.enabled = true
}

// Disable turns throttling off: every tick renders.
func (a *Adaptive) Disable() {
	a.enabled = false
}

// Enabled reports whether throttling is on.
func (a *Adaptive) Enabled() bool {
	return a.enabled
}

// SetTargetFPS sets the frame rate, clamped to [MinFPS, MaxFPS].
func (a *Adaptive) SetTargetFPS(fps int) {
	if fps < MinFPS {
		fps = MinFPS
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	a.targetFPS = fps
	a.interval = time.Second / time.Duration(fps)
}

// TargetFPS returns the clamped frame rate.
func (a *Adaptive) TargetFPS() int {
	return a.targetFPS
}

// FrameInterval returns the minimum time between unforced frames.
func (a *Adaptive) FrameInterval() time.Duration {
	return a.interval
}

// SetMoveThreshold sets the camera travel that forces a frame.
func (a *Adaptive) SetMoveThreshold(d float32) {
	a.threshold = d
}

// Stats returns the decision counters.
func (a *Adaptive) Stats() Stats {
	return a.stats
}

// Reset forgets the last frame so the next tick renders.
func (a *Adaptive) Reset() {
	a.hasFrame = false
	a.hasPos = false
}

// ShouldRender decides whether the tick at now renders. now is the elapsed
// time since the loop started. cam may be nil, in which case camera travel
// never forces a frame.
func (a *Adaptive) ShouldRender(now time.Duration, cam *camera.State, interacting bool) bool {
	if !a.enabled {
		a.stats.Rendered++
		return true
	}
	if !a.hasFrame {
		a.record(now, cam)
		return true
	}
	if now-a.lastFrame < a.interval {
		if !interacting && !a.moved(cam) {
			a.stats.Skipped++
			return false
		}
		a.stats.Overrides++
	}
	a.record(now, cam)
	return true
}

func (a *Adaptive) moved(cam *camera.State) bool {
	if cam == nil {
		return false
	}
	if !a.hasPos {
		return true
	}
	return cam.Position.Sub(a.lastPos).Len() > a.threshold
}

func (a *Adaptive) record(now time.Duration, cam *camera.State) {
	a.hasFrame = true
	a.lastFrame = now
	if cam != nil {
		a.lastPos = cam.Position
		a.hasPos = true
	}
	a.stats.Rendered++
}
