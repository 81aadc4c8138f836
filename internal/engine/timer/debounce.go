package timer

import "time"

// Debouncer runs a callback once input has been quiet for a delay. Each
// Trigger replaces the pending timer, so at most one is ever scheduled.
type Debouncer struct {
	queue   *Queue
	delay   time.Duration
	fn      func()
	pending *Timer
}

// NewDebouncer creates a debouncer on q.
func NewDebouncer(q *Queue, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{queue: q, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.pending.Stop()
	d.pending = d.queue.AfterFunc(d.delay, d.fire)
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.pending.Stop()
	d.pending = nil
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending.Pending()
}

// SetDelay changes the quiet period for subsequent triggers.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.delay = delay
}

func (d *Debouncer) fire() {
	d.pending = nil
	d.fn()
}
