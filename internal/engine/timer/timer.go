// Package timer provides a single-threaded timer queue driven by the render
// loop. Callbacks run inside RunDue on the caller's goroutine.
package timer

import (
	"container/heap"
	"time"
)

// Clock reports the current loop time.
type Clock func() time.Duration

// Timer is a pending callback.
type Timer struct {
	at      time.Duration
	seq     uint64
	fn      func()
	index   int // Heap index, -1 once fired or stopped
	stopped bool
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped || t.index < 0 {
		return false
	}
	t.stopped = true
	return true
}

// Pending reports whether the timer has neither fired nor been stopped.
func (t *Timer) Pending() bool {
	return t != nil && !t.stopped && t.index >= 0
}

// Queue orders timers by due time. Timers due at the same time fire in the
// order they were scheduled.
type Queue struct {
	now   time.Duration
	seq   uint64
	items timerHeap
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Now returns the time of the last RunDue call.
func (q *Queue) Now() time.Duration {
	return q.now
}

// AfterFunc schedules fn to run d after the queue's current time.
func (q *Queue) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &Timer{at: q.now + d, seq: q.seq, fn: fn}
	heap.Push(&q.items, t)
	return t
}

// Len returns the number of pending timers.
func (q *Queue) Len() int {
	n := 0
	for _, t := range q.items {
		if !t.stopped {
			n++
		}
	}
	return n
}

// RunDue advances the queue to now and runs every timer due by then.
// Callbacks may schedule or stop timers; new timers due by now also run.
// It returns the number of callbacks run.
func (q *Queue) RunDue(now time.Duration) int {
	if now > q.now {
		q.now = now
	}
	ran := 0
	for len(q.items) > 0 && q.items[0].at <= q.now {
		t := heap.Pop(&q.items).(*Timer)
		if t.stopped {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at == h[j].at {
		return h[i].seq < h[j].seq
	}
	return h[i].at < h[j].at
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
