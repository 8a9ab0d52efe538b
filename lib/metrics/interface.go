package metrics

import "time"

// Outcome labels how a dispatched operation completed.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeError     Outcome = "error"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCancelled Outcome = "cancelled"
)

// Event is one "operation completed" record.
type Event struct {
	Op      string
	Outcome Outcome
	Elapsed time.Duration
}

// Sink consumes engine events. Implementations must be safe for
// concurrent use and must never block the caller for long; the engine
// treats every call as fire-and-forget.
type Sink interface {
	// RecordOperation records one completed operation.
	RecordOperation(op string, outcome Outcome, elapsed time.Duration)

	// RecordStoreStats records the store's current occupancy.
	RecordStoreStats(shardCount, keyCount int)
}
