package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// filter pass runs.
const DefaultDebounce = 300 * time.Millisecond

// Timer is the part of *time.Timer a Debouncer needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d. time.AfterFunc satisfies it.
type Scheduler func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer runs only the last function triggered within a quiet window.
// Each Trigger cancels the pending run and restarts the window.
type Debouncer struct {
	window   time.Duration
	schedule Scheduler

	mu      sync.Mutex
	pending Timer
	seq     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer with the given window. A non-positive
// window uses DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	return newDebouncer(window, afterFunc)
}

func newDebouncer(window time.Duration, schedule Scheduler) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window, schedule: schedule}
}

// Trigger schedules fn to run after the window, replacing any pending run.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.schedule(d.window, func() {
		d.mu.Lock()
		// A timer that already fired when Stop was called must not run a
		// superseded function.
		current := seq == d.seq && !d.stopped
		if current {
			d.pending = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Stop cancels any pending run. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
