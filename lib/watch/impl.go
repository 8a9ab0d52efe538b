package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// waiter states; transitions away from pending happen exactly once via
// compare-and-swap, which resolves the wake/cancel race.
const (
	waiterPending uint32 = iota
	waiterDelivered
	waiterClosed
)

// waiter represents one suspended caller.
type waiter struct {
	pred  Predicate
	state atomic.Uint32
	wake  chan Snapshot // buffered(1), written once by the delivering party
}

// tryDeliver wakes the waiter with the given snapshot if it is still
// pending. Returns whether this call won the delivery.
func (w *waiter) tryDeliver(s Snapshot) bool {
	if !w.state.CompareAndSwap(waiterPending, waiterDelivered) {
		return false
	}
	w.wake <- s
	return true
}

// tryClose claims the waiter for the timeout/cancel path. Returns false
// if a delivery already won.
func (w *waiter) tryClose() bool {
	return w.state.CompareAndSwap(waiterPending, waiterClosed)
}

// waitList is the per-key list of pending waiters.
type waitList struct {
	mu      sync.Mutex
	waiters []*waiter
	// gone marks a list that has been removed from the side table; a
	// registration that catches it must retry with a fresh list.
	gone bool
}

type registryImpl struct {
	source SnapshotSource
	lists  *xsync.MapOf[string, *waitList]
}

// NewRegistry creates a notification registry that evaluates initial
// predicate checks against the given snapshot source.
func NewRegistry(source SnapshotSource) IRegistry {
	return &registryImpl{
		source: source,
		lists:  xsync.NewMapOf[string, *waitList](),
	}
}

// --------------------------------------------------------------------------
// Registration / Removal
// --------------------------------------------------------------------------

// register appends w to the wait list for key, creating the list if
// needed. Registration is an atomic append: once this returns, any
// Notify for key observes the waiter.
func (r *registryImpl) register(key string, w *waiter) {
	for {
		l, _ := r.lists.LoadOrStore(key, &waitList{})
		l.mu.Lock()
		if l.gone {
			l.mu.Unlock()
			continue
		}
		l.waiters = append(l.waiters, w)
		l.mu.Unlock()
		return
	}
}

// unregister removes w from the wait list for key, if it is still there.
// Safe to call after a concurrent wake already removed the waiter.
func (r *registryImpl) unregister(key string, w *waiter) {
	l, ok := r.lists.Load(key)
	if !ok {
		return
	}
	l.mu.Lock()
	for i, cand := range l.waiters {
		if cand == w {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			break
		}
	}
	drained := len(l.waiters) == 0 && !l.gone
	if drained {
		l.gone = true
	}
	l.mu.Unlock()

	if drained {
		r.dropList(key, l)
	}
}

// dropList removes a tombstoned list from the side table. Only the exact
// list is removed; a fresh list stored meanwhile stays untouched.
func (r *registryImpl) dropList(key string, l *waitList) {
	r.lists.Compute(key, func(cur *waitList, loaded bool) (*waitList, bool) {
		return cur, loaded && cur == l
	})
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (r *registryImpl) Wait(ctx context.Context, key string, p Predicate, timeout time.Duration) (Outcome, Snapshot) {
	// zero timeout: single check, never registered, never notified
	if timeout == 0 {
		if s := r.source.Snapshot(key); p.Holds(s) {
			return OutcomeSatisfied, s
		}
		return OutcomeTimedOut, Snapshot{}
	}

	w := &waiter{
		pred: p,
		wake: make(chan Snapshot, 1),
	}

	// Register first, then check the current state. A mutation landing
	// in between is seen by one of the two paths, never by neither.
	r.register(key, w)
	if s := r.source.Snapshot(key); p.Holds(s) {
		w.tryDeliver(s)
	}

	var timer *time.Timer
	var expire <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}

	select {
	case s := <-w.wake:
		r.unregister(key, w)
		return OutcomeSatisfied, s
	case <-expire:
		return r.resolveLost(key, w, OutcomeTimedOut)
	case <-ctx.Done():
		return r.resolveLost(key, w, OutcomeCancelled)
	}
}

// resolveLost finishes a wait whose timer or context fired. If a
// concurrent delivery won the race, the satisfied outcome is returned
// instead; the waiter never observes both.
func (r *registryImpl) resolveLost(key string, w *waiter, o Outcome) (Outcome, Snapshot) {
	if w.tryClose() {
		r.unregister(key, w)
		return o, Snapshot{}
	}
	// lost against a concurrent delivery; the snapshot is already in
	// flight on the wake channel
	s := <-w.wake
	r.unregister(key, w)
	return OutcomeSatisfied, s
}

func (r *registryImpl) Notify(key string, s Snapshot) {
	l, ok := r.lists.Load(key)
	if !ok {
		return
	}

	l.mu.Lock()
	remaining := l.waiters[:0]
	for _, w := range l.waiters {
		if w.pred.Holds(s) && w.tryDeliver(s) {
			continue
		}
		if w.state.Load() != waiterPending {
			// delivered or closed elsewhere; drop from the list
			continue
		}
		remaining = append(remaining, w)
	}
	l.waiters = remaining
	drained := len(l.waiters) == 0 && !l.gone
	if drained {
		l.gone = true
	}
	l.mu.Unlock()

	if drained {
		r.dropList(key, l)
	}
}

func (r *registryImpl) Pending(key string) int {
	l, ok := r.lists.Load(key)
	if !ok {
		return 0
	}
	l.mu.Lock()
	n := len(l.waiters)
	l.mu.Unlock()
	return n
}
