package formz

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestSource_DebounceEmitsOnlyLastValue(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	var got []string
	src.out.subscribe(func(v string) { got = append(got, v) })

	// Rapid mutations within the window: each set re-arms the timer.
	src.set("j")
	clock.Advance(50 * time.Millisecond)
	src.set("jo")
	clock.Advance(50 * time.Millisecond)
	src.set("john")

	if len(got) != 0 {
		t.Fatalf("expected no emission during active typing, got %v", got)
	}

	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()

	select {
	case <-src.timerC():
	default:
		t.Fatal("expected debounce timer to have fired")
	}
	if !src.fire() {
		t.Fatal("expected fire to propagate the pending value")
	}

	if len(got) != 1 || got[0] != "john" {
		t.Errorf("expected exactly one emission of the last value, got %v", got)
	}
}

func TestSource_DedupAcrossDebounceBoundary(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	var count int
	src.out.subscribe(func(string) { count++ })

	src.set("john")
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	<-src.timerC()
	if !src.fire() {
		t.Fatal("expected first settle to propagate")
	}

	// Mutating back to the settled value must not emit again.
	src.set("john")
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	<-src.timerC()
	if src.fire() {
		t.Error("expected duplicate settle to be suppressed")
	}

	if count != 1 {
		t.Errorf("expected 1 emission, got %d", count)
	}
}

func TestSource_ReArmsAfterSettle(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	var got []string
	src.out.subscribe(func(v string) { got = append(got, v) })

	src.set("john")
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	<-src.timerC()
	if !src.fire() {
		t.Fatal("expected first settle to propagate")
	}

	// A second distinct value must arm a fresh window and settle too.
	src.set("johnny")
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	select {
	case <-src.timerC():
	case <-time.After(time.Second):
		t.Fatal("expected the debounce timer to re-arm after a settle")
	}
	if !src.fire() {
		t.Fatal("expected second settle to propagate")
	}
	if len(got) != 2 || got[1] != "johnny" {
		t.Errorf("expected two emissions ending in the new value, got %v", got)
	}
}

func TestSource_FireWithoutPendingIsNoOp(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	if src.fire() {
		t.Error("expected fire with nothing pending to report no propagation")
	}
}

func TestSource_StopDropsPendingValue(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	var count int
	src.out.subscribe(func(string) { count++ })

	src.set("john")
	src.stop()

	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()

	if src.fire() {
		t.Error("expected no emission after stop")
	}
	if count != 0 {
		t.Errorf("expected 0 emissions after stop, got %d", count)
	}
}

func TestSource_SeedBypassesWindow(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	var got []string
	src.out.subscribe(func(v string) { got = append(got, v) })

	if !src.seed("") {
		t.Fatal("expected seed to propagate immediately")
	}
	if len(got) != 1 {
		t.Fatalf("expected immediate emission, got %v", got)
	}
}

func TestSource_TimerChannelNilBeforeFirstSet(t *testing.T) {
	clock := clockz.NewFakeClock()
	src := newSource[string]("field", clock, 100*time.Millisecond)

	if src.timerC() != nil {
		t.Error("expected nil timer channel before the first set")
	}
}
