package seek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathscope/internal/engine/timer"
)

const ms = time.Millisecond

type recorder struct {
	positions []int
}

func (r *recorder) refresh(p int) { r.positions = append(r.positions, p) }

func newController() (*Controller, *timer.Queue, *recorder) {
	q := timer.NewQueue()
	r := &recorder{}
	c := New(Config{RapidThreshold: 50 * ms, DebounceDelay: 100 * ms}, q, r.refresh)
	return c, q, r
}

func TestRepeatedPositionRefreshesOnce(t *testing.T) {
	c, q, r := newController()
	for i := 0; i < 5; i++ {
		q.RunDue(time.Duration(i) * 200 * ms)
		c.Seek(42)
	}
	q.RunDue(10 * time.Second)

	assert.Equal(t, []int{42}, r.positions)
	assert.Equal(t, 4, c.Stats().Redundant)
}

func TestRapidSeekingDefersRefresh(t *testing.T) {
	c, q, r := newController()

	// Inputs 10 ms apart: position state only.
	for i := 0; i < 5; i++ {
		q.RunDue(time.Duration(i) * 10 * ms)
		c.Seek(1 + i)
		assert.Equal(t, 1+i, c.Position())
		assert.Empty(t, r.positions, "no refresh while seeking")
		assert.True(t, c.Seeking())
		assert.Equal(t, i > 0, c.Rapid())
	}

	// Last input at 40 ms; refresh 100 ms later.
	q.RunDue(139 * ms)
	assert.Empty(t, r.positions)
	q.RunDue(140 * ms)
	assert.Equal(t, []int{5}, r.positions)
	assert.False(t, c.Seeking())
	assert.False(t, c.Rapid())

	st := c.Stats()
	assert.Equal(t, 5, st.Inputs)
	assert.Equal(t, 4, st.Rapid)
	assert.Equal(t, 1, st.Refreshes)
}

func TestSettledSeekingDebounces(t *testing.T) {
	c, q, r := newController()

	// 60 ms apart is above the rapid threshold but inside the debounce delay.
	for i := 0; i < 5; i++ {
		q.RunDue(time.Duration(i) * 60 * ms)
		c.Seek(100 + i)
		assert.Empty(t, r.positions, "no refresh before the input settles")
		assert.False(t, c.Rapid())
		assert.True(t, c.Seeking())
	}

	q.RunDue(339 * ms)
	assert.Empty(t, r.positions)
	q.RunDue(340 * ms)
	assert.Equal(t, []int{104}, r.positions)

	st := c.Stats()
	assert.Equal(t, 0, st.Rapid)
	assert.Equal(t, 1, st.Refreshes)
}

func TestIsolatedSeekRefreshesAfterDelay(t *testing.T) {
	c, q, r := newController()
	q.RunDue(0)
	c.Seek(3)
	q.RunDue(99 * ms)
	assert.Empty(t, r.positions)
	q.RunDue(100 * ms)
	assert.Equal(t, []int{3}, r.positions)

	q.RunDue(500 * ms)
	c.Seek(8)
	q.RunDue(600 * ms)
	assert.Equal(t, []int{3, 8}, r.positions)
}

func TestRapidReturnToAppliedPositionIsRedundant(t *testing.T) {
	c, q, r := newController()
	q.RunDue(0)
	c.Seek(5)
	q.RunDue(200 * ms)
	require.Equal(t, []int{5}, r.positions)

	c.Seek(9)
	q.RunDue(210 * ms)
	c.Seek(5)
	q.RunDue(time.Second)

	assert.Equal(t, []int{5}, r.positions)
	assert.Equal(t, 1, c.Stats().Redundant)
	applied, ok := c.Applied()
	assert.True(t, ok)
	assert.Equal(t, 5, applied)
}

func TestResetAllowsSamePositionAgain(t *testing.T) {
	c, q, r := newController()
	q.RunDue(0)
	c.Seek(7)
	q.RunDue(100 * ms)
	c.Reset()
	c.Seek(7)
	q.RunDue(200 * ms)
	assert.Equal(t, []int{7, 7}, r.positions)

	// Reset drops a pending refresh.
	c.Seek(9)
	c.Reset()
	q.RunDue(time.Second)
	assert.Equal(t, []int{7, 7}, r.positions)
	assert.False(t, c.Seeking())
}
