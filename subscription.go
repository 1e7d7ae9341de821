package formz

import (
	"sync"
	"sync/atomic"
)

// Subscription is an ownership handle for one active pipeline wiring,
// connecting a source, derivation, combinator, or sink to its upstream.
// Cancel releases the wiring exactly once; further calls are no-ops.
type Subscription struct {
	canceled atomic.Bool
	release  func()
}

func newSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Cancel releases the subscription. Idempotent: only the first call runs
// the release, and a canceled subscription never delivers again.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) && s.release != nil {
		s.release()
	}
}

// Canceled reports whether the subscription has been released.
func (s *Subscription) Canceled() bool {
	return s.canceled.Load()
}

// subscriptionBag is the ownership collection for every subscription a Form
// wires. The Form releases the whole bag on teardown; release is idempotent
// and additions after release are canceled immediately.
type subscriptionBag struct {
	mu       sync.Mutex
	subs     []*Subscription
	released bool
}

func newSubscriptionBag() *subscriptionBag {
	return &subscriptionBag{}
}

func (b *subscriptionBag) add(s *Subscription) {
	b.mu.Lock()
	released := b.released
	if !released {
		b.subs = append(b.subs, s)
	}
	b.mu.Unlock()

	if released {
		s.Cancel()
	}
}

func (b *subscriptionBag) release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}
