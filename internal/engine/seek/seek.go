// Package seek throttles scrubbing through a toolpath.
package seek

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/timer"
	"github.com/Faultbox/pathscope/internal/logger"
)

// Config holds seek timing.
type Config struct {
	// RapidThreshold is the input gap below which seeking counts as rapid.
	RapidThreshold time.Duration
	// DebounceDelay is the quiet period after the last input before a refresh.
	DebounceDelay time.Duration
}

// DefaultConfig returns the default seek timing.
func DefaultConfig() Config {
	return Config{
		RapidThreshold: 50 * time.Millisecond,
		DebounceDelay:  150 * time.Millisecond,
	}
}

// RefreshFunc performs the full geometry, visibility and tooltip refresh for
// a scrub position.
type RefreshFunc func(position int)

// Stats counts seek activity.
type Stats struct {
	Inputs    int
	Rapid     int // Inputs that arrived below the rapid threshold
	Refreshes int
	Redundant int // Refreshes skipped because the position was already applied
}

// Controller turns a stream of seek inputs into as few refreshes as possible.
// Every input only records the position; one refresh follows after the input
// has been quiet for the debounce delay. Inputs arriving faster than the
// rapid threshold additionally mark the controller rapid.
type Controller struct {
	cfg      Config
	clock    *timer.Queue
	refresh  RefreshFunc
	debounce *timer.Debouncer

	position   int
	applied    int
	hasApplied bool
	lastInput  time.Duration
	hasInput   bool
	rapid      bool

	stats Stats
	log   *zap.Logger
}

// New creates a controller. Time is read from q, which must be advanced by the
// loop before inputs are handled.
func New(cfg Config, q *timer.Queue, refresh RefreshFunc) *Controller {
	c := &Controller{cfg: cfg, clock: q, refresh: refresh, log: logger.Named("seek")}
	c.debounce = timer.NewDebouncer(q, cfg.DebounceDelay, c.settle)
	return c
}

// Seek requests the scrub position. The refresh runs once input has been
// quiet for the debounce delay.
func (c *Controller) Seek(position int) {
	now := c.clock.Now()
	c.rapid = c.hasInput && now-c.lastInput < c.cfg.RapidThreshold
	c.lastInput, c.hasInput = now, true
	c.position = position
	c.stats.Inputs++
	if c.rapid {
		c.stats.Rapid++
	}
	c.debounce.Trigger()
}

// Position returns the most recently requested position.
func (c *Controller) Position() int {
	return c.position
}

// Applied returns the last refreshed position and whether any refresh happened.
func (c *Controller) Applied() (int, bool) {
	return c.applied, c.hasApplied
}

// Seeking reports whether a debounced refresh is pending.
func (c *Controller) Seeking() bool {
	return c.debounce.Pending()
}

// Rapid reports whether inputs are arriving faster than the rapid threshold
// and their refresh is still pending. Position dependent work such as
// rendering is skipped meanwhile.
func (c *Controller) Rapid() bool {
	return c.rapid && c.debounce.Pending()
}

// Stats returns the activity counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Reset forgets the applied position so the next input refreshes, used after
// the toolpath is replaced.
func (c *Controller) Reset() {
	c.debounce.Cancel()
	c.hasApplied = false
	c.hasInput = false
	c.rapid = false
}

func (c *Controller) settle() {
	c.apply()
}

func (c *Controller) apply() {
	if c.hasApplied && c.applied == c.position {
		c.stats.Redundant++
		return
	}
	c.applied, c.hasApplied = c.position, true
	c.stats.Refreshes++
	c.log.Debug("seek refresh", zap.Int("position", c.position))
	if c.refresh != nil {
		c.refresh(c.position)
	}
}
