package formz

import "testing"

func TestNode_SuppressesConsecutiveDuplicates(t *testing.T) {
	n := &node[string]{}
	var got []string
	n.subscribe(func(v string) { got = append(got, v) })

	if !n.emit("a") {
		t.Error("first emission should propagate")
	}
	if n.emit("a") {
		t.Error("duplicate emission should be suppressed")
	}
	if !n.emit("b") {
		t.Error("distinct emission should propagate")
	}
	if !n.emit("a") {
		t.Error("non-consecutive repeat should propagate")
	}

	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNode_CanceledSubscriberStopsReceiving(t *testing.T) {
	n := &node[int]{}
	var count int
	sub := n.subscribe(func(int) { count++ })

	n.emit(1)
	sub.Cancel()
	n.emit(2)
	n.emit(3)

	if count != 1 {
		t.Errorf("expected 1 delivery before cancel, got %d", count)
	}
}

func TestNode_Value(t *testing.T) {
	n := &node[int]{}
	if _, ok := n.value(); ok {
		t.Error("expected no value before first emission")
	}
	n.emit(42)
	v, ok := n.value()
	if !ok || v != 42 {
		t.Errorf("value() = (%d, %v), want (42, true)", v, ok)
	}
}

func TestMapped_DerivesAndDedupes(t *testing.T) {
	bag := newSubscriptionBag()
	src := &node[string]{}
	lengths := mapped(bag, src, func(s string) int { return len(s) })

	var got []int
	lengths.subscribe(func(v int) { got = append(got, v) })

	src.emit("ab")
	src.emit("cd") // same length: derived node suppresses it
	src.emit("efg")

	want := []int{2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCombined2_WaitsForAllInputs(t *testing.T) {
	bag := newSubscriptionBag()
	na := &node[string]{}
	nb := &node[string]{}
	eq := combined2(bag, na, nb, func(a, b string) bool { return a == b })

	var got []bool
	eq.subscribe(func(v bool) { got = append(got, v) })

	na.emit("x")
	if len(got) != 0 {
		t.Fatal("combine emitted before all inputs were ready")
	}

	nb.emit("x")
	if len(got) != 1 || got[0] != true {
		t.Fatalf("expected [true] after both inputs, got %v", got)
	}
}

func TestCombined2_LatestValueSemantics(t *testing.T) {
	bag := newSubscriptionBag()
	na := &node[string]{}
	nb := &node[string]{}
	eq := combined2(bag, na, nb, func(a, b string) bool { return a == b })

	var got []bool
	eq.subscribe(func(v bool) { got = append(got, v) })

	na.emit("abc")
	nb.emit("abc") // true
	na.emit("xyz") // recombines with latest b: false
	nb.emit("xyz") // recombines with latest a: true

	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCombined3_RecomputesOnAnyInput(t *testing.T) {
	bag := newSubscriptionBag()
	empty := &node[bool]{}
	equal := &node[bool]{}
	strong := &node[bool]{}
	check := combined3(bag, empty, equal, strong, resolveCheck)

	var got []PasswordCheck
	check.subscribe(func(v PasswordCheck) { got = append(got, v) })

	empty.emit(true)
	equal.emit(true)
	if len(got) != 0 {
		t.Fatal("combine emitted before all inputs were ready")
	}

	strong.emit(false)
	empty.emit(false) // latest equal=true, strong=false
	strong.emit(true)

	want := []PasswordCheck{CheckEmpty, CheckNotStrongEnough, CheckValid}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCombined_BagReleaseDetachesEdges(t *testing.T) {
	bag := newSubscriptionBag()
	src := &node[int]{}
	doubled := mapped(bag, src, func(v int) int { return v * 2 })

	var count int
	doubled.subscribe(func(int) { count++ })

	src.emit(1)
	bag.release()
	src.emit(2)

	if count != 1 {
		t.Errorf("expected no deliveries after bag release, got %d total", count)
	}
}
