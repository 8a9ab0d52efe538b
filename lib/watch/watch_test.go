package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tkv-io/tkv/lib/value"
)

// fakeSource is a mutable snapshot source for registry tests. Mutations
// drive Notify the same way the engine does: change state first, then
// publish the snapshot.
type fakeSource struct {
	mu   sync.Mutex
	keys map[string]Snapshot
}

func newFakeSource() *fakeSource {
	return &fakeSource{keys: make(map[string]Snapshot)}
}

func (f *fakeSource) Snapshot(key string) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key]
}

func (f *fakeSource) set(r IRegistry, key string, v *value.Value) {
	f.mu.Lock()
	s := f.keys[key]
	s.Value = v
	s.Version++
	s.Exists = true
	f.keys[key] = s
	f.mu.Unlock()
	r.Notify(key, s)
}

func (f *fakeSource) delete(r IRegistry, key string) {
	f.mu.Lock()
	s := f.keys[key]
	s = Snapshot{Version: s.Version}
	f.keys[key] = s
	f.mu.Unlock()
	r.Notify(key, s)
}

func TestZeroTimeout(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	// unsatisfied: resolves immediately without registering
	outcome, _ := r.Wait(context.Background(), "k", Exists(), 0)
	if outcome != OutcomeTimedOut {
		t.Errorf("Expected immediate timeout, got %s", outcome)
	}
	if r.Pending("k") != 0 {
		t.Errorf("Expected no registered waiters after zero-timeout wait, got %d", r.Pending("k"))
	}

	// satisfied: returns the current snapshot
	src.set(r, "k", value.NewInteger(1))
	outcome, snap := r.Wait(context.Background(), "k", Exists(), 0)
	if outcome != OutcomeSatisfied {
		t.Errorf("Expected satisfied zero-timeout wait, got %s", outcome)
	}
	if !snap.Exists || !snap.Value.Equal(value.NewInteger(1)) {
		t.Errorf("Expected snapshot of current state, got %+v", snap)
	}
}

func TestWakeOnNotify(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	type result struct {
		outcome Outcome
		snap    Snapshot
	}
	done := make(chan result, 1)

	go func() {
		o, s := r.Wait(context.Background(), "k", ValueEquals(value.NewInteger(3)), 2*time.Second)
		done <- result{o, s}
	}()

	// wait until the waiter is registered
	for r.Pending("k") == 0 {
		time.Sleep(time.Millisecond)
	}

	// non-matching updates must not wake the waiter
	src.set(r, "k", value.NewInteger(1))
	src.set(r, "k", value.NewInteger(2))
	select {
	case res := <-done:
		t.Fatalf("Expected waiter to stay pending, got %s", res.outcome)
	case <-time.After(20 * time.Millisecond):
	}

	src.set(r, "k", value.NewInteger(3))
	select {
	case res := <-done:
		if res.outcome != OutcomeSatisfied {
			t.Errorf("Expected satisfied outcome, got %s", res.outcome)
		}
		if !res.snap.Value.Equal(value.NewInteger(3)) {
			t.Errorf("Expected snapshot value 3, got %s", res.snap.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected waiter to be woken")
	}

	if r.Pending("k") != 0 {
		t.Errorf("Expected waiter list to be cleaned up, got %d pending", r.Pending("k"))
	}
}

func TestInitialCheckAfterRegister(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	// state already satisfies the predicate before Wait is called: the
	// post-registration check must catch it without any Notify
	src.mu.Lock()
	src.keys["k"] = Snapshot{Value: value.NewBoolean(true), Version: 1, Exists: true}
	src.mu.Unlock()

	outcome, snap := r.Wait(context.Background(), "k", Exists(), time.Second)
	if outcome != OutcomeSatisfied {
		t.Errorf("Expected satisfied wait without notify, got %s", outcome)
	}
	if !snap.Exists {
		t.Error("Expected snapshot to report existence")
	}
}

func TestTimeout(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	start := time.Now()
	outcome, _ := r.Wait(context.Background(), "k", Exists(), 50*time.Millisecond)
	if outcome != OutcomeTimedOut {
		t.Errorf("Expected timeout, got %s", outcome)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected wait to last the timeout, returned after %s", elapsed)
	}
	if r.Pending("k") != 0 {
		t.Errorf("Expected timed-out waiter to be unregistered, got %d pending", r.Pending("k"))
	}
}

func TestCancellation(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)

	go func() {
		o, _ := r.Wait(ctx, "k", Exists(), -1)
		done <- o
	}()

	for r.Pending("k") == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case o := <-done:
		if o != OutcomeCancelled {
			t.Errorf("Expected cancelled outcome, got %s", o)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected cancellation to resolve the wait")
	}

	if r.Pending("k") != 0 {
		t.Errorf("Expected cancelled waiter to be unregistered, got %d pending", r.Pending("k"))
	}
}

func TestExactlyOnceDelivery(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	// many notifiers race against one waiter; it must resolve exactly once
	const rounds = 200
	for i := 0; i < rounds; i++ {
		var woken atomic.Int32
		done := make(chan struct{})

		go func() {
			o, _ := r.Wait(context.Background(), "k", Exists(), time.Second)
			if o == OutcomeSatisfied {
				woken.Add(1)
			}
			close(done)
		}()

		for r.Pending("k") == 0 {
			time.Sleep(time.Microsecond)
		}

		var wg sync.WaitGroup
		for n := 0; n < 4; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				src.set(r, "k", value.NewBoolean(true))
			}()
		}
		wg.Wait()
		<-done

		if woken.Load() != 1 {
			t.Fatalf("Expected exactly one wake in round %d, got %d", i, woken.Load())
		}

		src.delete(r, "k")
	}
}

func TestCancelSatisfyRace(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	// a cancellation racing a satisfying write must resolve the waiter to
	// exactly one of the two outcomes and leave no registration behind
	const rounds = 200
	var satisfied, cancelled int
	for i := 0; i < rounds; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan Outcome, 1)

		go func() {
			o, _ := r.Wait(ctx, "k", Exists(), time.Second)
			done <- o
		}()

		for r.Pending("k") == 0 {
			time.Sleep(time.Microsecond)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancel()
		}()
		go func() {
			defer wg.Done()
			src.set(r, "k", value.NewBoolean(true))
		}()
		wg.Wait()

		switch o := <-done; o {
		case OutcomeSatisfied:
			satisfied++
		case OutcomeCancelled:
			cancelled++
		default:
			t.Fatalf("Expected satisfied or cancelled in round %d, got %s", i, o)
		}

		if r.Pending("k") != 0 {
			t.Fatalf("Expected resolved waiter to be unregistered in round %d, got %d pending", i, r.Pending("k"))
		}
		src.delete(r, "k")
	}

	t.Logf("cancel/satisfy race: %d satisfied, %d cancelled", satisfied, cancelled)
}

func TestAbsentAndVersionPredicates(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	src.set(r, "k", value.NewInteger(1)) // version 1

	done := make(chan Outcome, 1)
	go func() {
		o, _ := r.Wait(context.Background(), "k", Absent(), time.Second)
		done <- o
	}()
	for r.Pending("k") == 0 {
		time.Sleep(time.Millisecond)
	}
	src.delete(r, "k")
	if o := <-done; o != OutcomeSatisfied {
		t.Errorf("Expected deletion to satisfy Absent, got %s", o)
	}

	// VersionChanged is satisfied by deletion as well as by a new version
	if !VersionChanged(3).Holds(Snapshot{Exists: false}) {
		t.Error("Expected VersionChanged to hold for deleted key")
	}
	if VersionChanged(3).Holds(Snapshot{Exists: true, Version: 3}) {
		t.Error("Expected VersionChanged not to hold for unchanged version")
	}
	if !VersionChanged(3).Holds(Snapshot{Exists: true, Version: 4}) {
		t.Error("Expected VersionChanged to hold for newer version")
	}
}

func TestManyWaitersOneKey(t *testing.T) {
	src := newFakeSource()
	r := NewRegistry(src)

	const waiters = 32
	var satisfied atomic.Int32
	var wg sync.WaitGroup
	wg.Add(waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			o, _ := r.Wait(context.Background(), "k", Exists(), 2*time.Second)
			if o == OutcomeSatisfied {
				satisfied.Add(1)
			}
		}()
	}

	for r.Pending("k") < waiters {
		time.Sleep(time.Millisecond)
	}

	// one write wakes every waiter whose predicate holds
	src.set(r, "k", value.NewString("here"))
	wg.Wait()

	if satisfied.Load() != waiters {
		t.Errorf("Expected all %d waiters to be satisfied, got %d", waiters, satisfied.Load())
	}
	if r.Pending("k") != 0 {
		t.Errorf("Expected drained waiter list, got %d pending", r.Pending("k"))
	}
}
