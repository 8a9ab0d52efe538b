package metrics

import "time"

type noopSink struct{}

// NewNoopSink returns a sink that discards all events. This is the
// default wiring when no sink is injected.
func NewNoopSink() Sink {
	return noopSink{}
}

func (noopSink) RecordOperation(string, Outcome, time.Duration) {}

func (noopSink) RecordStoreStats(int, int) {}
