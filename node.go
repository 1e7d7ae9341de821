package formz

// node is one vertex in the dataflow graph. It remembers the last emitted
// value and fans distinct emissions out to its subscribers synchronously,
// so a settled input propagates through the whole graph before the next
// event is processed. Consecutive duplicates are suppressed: downstream
// recomputation only runs when something actually changed.
//
// Nodes are owned by the Form's interaction loop and are not safe for
// concurrent use.
type node[T comparable] struct {
	listeners []*nodeListener[T]
	last      T
	ready     bool
}

type nodeListener[T comparable] struct {
	fn  func(T)
	sub *Subscription
}

// subscribe registers fn for every distinct emission and returns the handle
// that detaches it.
func (n *node[T]) subscribe(fn func(T)) *Subscription {
	l := &nodeListener[T]{fn: fn, sub: newSubscription(nil)}
	n.listeners = append(n.listeners, l)
	return l.sub
}

// emit publishes v to all live subscribers. It reports whether v actually
// propagated; false means v equaled the previous emission and was dropped.
func (n *node[T]) emit(v T) bool {
	if n.ready && v == n.last {
		return false
	}
	n.last = v
	n.ready = true
	for _, l := range n.listeners {
		if !l.sub.Canceled() {
			l.fn(v)
		}
	}
	return true
}

// value returns the last emitted value and whether one exists yet.
func (n *node[T]) value() (T, bool) {
	return n.last, n.ready
}

// mapped derives a new node by applying a pure function to every emission
// of src. The wiring subscription is owned by bag.
func mapped[In, Out comparable](bag *subscriptionBag, src *node[In], fn func(In) Out) *node[Out] {
	dst := &node[Out]{}
	bag.add(src.subscribe(func(v In) {
		dst.emit(fn(v))
	}))
	return dst
}

// combined2 derives a node from the latest values of two inputs. It holds
// the most recent value of each input and recomputes whenever either one
// emits, but only once both have emitted at least once.
func combined2[A, B, Out comparable](bag *subscriptionBag, na *node[A], nb *node[B], fn func(A, B) Out) *node[Out] {
	dst := &node[Out]{}
	var (
		a        A
		b        B
		okA, okB bool
	)
	recompute := func() {
		if okA && okB {
			dst.emit(fn(a, b))
		}
	}
	bag.add(na.subscribe(func(v A) {
		a, okA = v, true
		recompute()
	}))
	bag.add(nb.subscribe(func(v B) {
		b, okB = v, true
		recompute()
	}))
	return dst
}

// combined3 is combined2 for three inputs.
func combined3[A, B, C, Out comparable](bag *subscriptionBag, na *node[A], nb *node[B], nc *node[C], fn func(A, B, C) Out) *node[Out] {
	dst := &node[Out]{}
	var (
		a             A
		b             B
		c             C
		okA, okB, okC bool
	)
	recompute := func() {
		if okA && okB && okC {
			dst.emit(fn(a, b, c))
		}
	}
	bag.add(na.subscribe(func(v A) {
		a, okA = v, true
		recompute()
	}))
	bag.add(nb.subscribe(func(v B) {
		b, okB = v, true
		recompute()
	}))
	bag.add(nc.subscribe(func(v C) {
		c, okC = v, true
		recompute()
	}))
	return dst
}
