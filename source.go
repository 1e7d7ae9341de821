package formz

import (
	"time"

	"github.com/zoobzio/clockz"
)

// source adapts a raw mutable field as a time-debounced stream. Raw sets
// arm (or re-arm) a quiet-period timer; only the value that survives the
// window is emitted into the output node. Duplicate suppression happens at
// the node, so setting a field back to its settled value emits nothing even
// across a debounce boundary.
//
// Sources are owned by the Form's interaction loop: set and fire must only
// be called from the loop, and the timer channel is consumed by the loop's
// select.
type source[T comparable] struct {
	name    string
	clock   clockz.Clock
	window  time.Duration
	timer   clockz.Timer
	pending T
	armed   bool
	out     *node[T]
}

func newSource[T comparable](name string, clock clockz.Clock, window time.Duration) *source[T] {
	return &source[T]{
		name:   name,
		clock:  clock,
		window: window,
		out:    &node[T]{},
	}
}

// set records a raw mutation and restarts the debounce window. The old
// timer is stopped and replaced with a fresh one; a timer that already
// fired is simply abandoned, its channel never read again.
func (s *source[T]) set(v T) {
	s.pending = v
	s.armed = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.NewTimer(s.window)
}

// timerC returns the debounce timer channel, or nil when no timer exists
// yet so the loop's select arm stays disabled.
func (s *source[T]) timerC() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C()
}

// fire emits the pending value after its window elapsed. It reports whether
// the emission propagated (false when nothing was pending or the value was
// a duplicate of the previous settled value).
func (s *source[T]) fire() bool {
	if !s.armed {
		return false
	}
	s.armed = false
	return s.out.emit(s.pending)
}

// seed emits v immediately, bypassing the debounce window. Used for the
// initial value at wiring time and for all sets in sync mode.
func (s *source[T]) seed(v T) bool {
	return s.out.emit(v)
}

// stop cancels any pending timer and drops the pending value, guaranteeing
// no emission after teardown.
func (s *source[T]) stop() {
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
	}
}
