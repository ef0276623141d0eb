package listing

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires timers only when Advance moves past their deadline.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
	mu     sync.Mutex
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func TestDebouncer_RapidSetsSettleOnce(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer[string](DefaultDebounce, clock)

	var settled []string
	d.OnSettle(func(v string) { settled = append(settled, v) })

	d.Set("m")
	clock.Advance(100 * time.Millisecond)
	d.Set("mi")
	clock.Advance(100 * time.Millisecond)
	d.Set("mil")

	assert.Equal(t, "mil", d.Live())
	assert.Empty(t, d.Settled())
	assert.True(t, d.Pending())

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, settled, "window has not elapsed since the last set")

	clock.Advance(time.Millisecond)
	require.Equal(t, []string{"mil"}, settled)
	assert.Equal(t, "mil", d.Settled())
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Len(t, settled, 1)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer[string](DefaultDebounce, clock)

	calls := 0
	d.OnSettle(func(string) { calls++ })

	d.Set("query")
	d.Stop()
	clock.Advance(time.Second)

	assert.Zero(t, calls)
	assert.Empty(t, d.Settled())
	assert.False(t, d.Pending())

	d.Set("after stop")
	clock.Advance(time.Second)
	assert.Zero(t, calls)
	assert.Equal(t, "query", d.Live())
}

func TestDebouncer_StaleTimerIgnored(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer[int](10*time.Millisecond, clock)

	d.Set(1)
	first := clock.timers[0]
	d.Set(2)

	// A timer that already fired before being stopped must not settle an old value.
	first.fn()
	assert.Equal(t, 0, d.Settled())

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 2, d.Settled())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer[string](DefaultDebounce, clock)

	d.Set("now")
	d.Flush()
	assert.Equal(t, "now", d.Settled())
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, "now", d.Settled())
}

func TestDebouncer_ZeroWindowSettlesImmediately(t *testing.T) {
	d := NewDebouncer[string](0, newFakeClock())
	d.Set("x")
	assert.Equal(t, "x", d.Settled())
}
