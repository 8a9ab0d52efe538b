package watch

import (
	"context"
	"time"

	"github.com/tkv-io/tkv/lib/value"
)

// --------------------------------------------------------------------------
// Snapshot
// --------------------------------------------------------------------------

// Snapshot is a point-in-time view of one key's state, as handed to
// predicates and delivered to woken waiters. Value is a deep copy (nil if
// the key is absent).
type Snapshot struct {
	Value   *value.Value
	Version uint64
	Exists  bool
}

// SnapshotSource provides the current snapshot of a key. The store side
// of the engine implements this; the registry uses it for the initial
// predicate check right after registration.
type SnapshotSource interface {
	Snapshot(key string) Snapshot
}

// --------------------------------------------------------------------------
// Outcome
// --------------------------------------------------------------------------

// Outcome is the terminal result of a Wait call. TimedOut and Cancelled
// are defined outcomes, not engine failures.
type Outcome uint8

const (
	OutcomeSatisfied Outcome = iota
	OutcomeTimedOut
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSatisfied:
		return "satisfied"
	case OutcomeTimedOut:
		return "timedout"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Registry Interface
// --------------------------------------------------------------------------

// IRegistry is the interface of the per-key notification registry.
type IRegistry interface {
	// Wait suspends the calling goroutine until the predicate holds for
	// key, the timeout elapses, or ctx is cancelled.
	//
	// Timeout semantics: a zero timeout checks the current snapshot once
	// and resolves immediately (OutcomeSatisfied or OutcomeTimedOut)
	// without ever registering; a negative timeout means no deadline.
	//
	// The returned snapshot is only meaningful for OutcomeSatisfied.
	Wait(ctx context.Context, key string, p Predicate, timeout time.Duration) (Outcome, Snapshot)

	// Notify re-evaluates the predicates of all waiters pending on key
	// against the given snapshot and wakes those that are satisfied.
	// Callers must not hold the store's per-key exclusion for key.
	Notify(key string, s Snapshot)

	// Pending returns the number of waiters currently registered for key.
	Pending(key string) int
}
