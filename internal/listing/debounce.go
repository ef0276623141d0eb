// Package listing implements the search, filter, sort and paginate pipeline
// shared by every tabular view of clients, products and purchases.
package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiescence window applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so debounce and date windows can be tested without sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds a live value and a settled copy that only follows the live
// value once it has been stable for the whole window.
// Each Set cancels the pending timer and schedules a new one, so the last
// value always wins. After Stop no further settle happens.
type Debouncer[T any] struct {
	clock    Clock
	timer    Timer
	onSettle func(T)
	live     T
	settled  T
	window   time.Duration
	gen      uint64
	mu       sync.Mutex
	pending  bool
	stopped  bool
}

// NewDebouncer creates a debouncer with the given window. A nil clock uses the system clock.
func NewDebouncer[T any](window time.Duration, clock Clock) *Debouncer[T] {
	if clock == nil {
		clock = SystemClock()
	}
	return &Debouncer[T]{
		clock:  clock,
		window: window,
	}
}

// OnSettle registers fn to be called with every settled value.
// fn runs on the timer goroutine, outside the debouncer lock.
func (d *Debouncer[T]) OnSettle(fn func(T)) {
	d.mu.Lock()
	d.onSettle = fn
	d.mu.Unlock()
}

// Set updates the live value and restarts the quiescence window.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.live = v
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.pending = true

	if d.window <= 0 {
		d.mu.Unlock()
		d.settle(gen)
		return
	}

	d.timer = d.clock.AfterFunc(d.window, func() { d.settle(gen) })
	d.mu.Unlock()
}

// Flush settles the live value now if a settle is pending.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	gen := d.gen
	d.mu.Unlock()
	d.settle(gen)
}

// Live returns the latest value passed to Set.
func (d *Debouncer[T]) Live() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Settled returns the last value that survived a full window.
func (d *Debouncer[T]) Settled() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Pending reports whether a settle is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending settle. The debouncer ignores Set afterwards.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// settle promotes the live value if gen is still the latest schedule.
// Timers that already fired when Stop or Set ran are discarded here.
func (d *Debouncer[T]) settle(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.settled = d.live
	d.pending = false
	d.timer = nil
	fn, v := d.onSettle, d.settled
	d.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}
