package metrics

import (
	"sync"
	"time"
)

// AsyncSink decouples the engine's hot path from a slow inner sink. The
// producing side only appends to a lock-free queue; a single background
// goroutine applies events to the wrapped sink.
type AsyncSink struct {
	inner Sink
	queue *eventQueue
	drain sync.WaitGroup
}

// NewAsyncSink wraps inner so that RecordOperation never blocks on it.
// Close must be called to stop the background goroutine; events recorded
// after Close are dropped.
func NewAsyncSink(inner Sink) *AsyncSink {
	s := &AsyncSink{
		inner: inner,
		queue: newEventQueue(),
	}
	s.drain.Add(1)
	go s.forward()
	return s
}

func (s *AsyncSink) forward() {
	defer s.drain.Done()
	for e := range s.queue.Recv() {
		s.inner.RecordOperation(e.Op, e.Outcome, e.Elapsed)
	}
}

func (s *AsyncSink) RecordOperation(op string, outcome Outcome, elapsed time.Duration) {
	s.queue.Push(&Event{Op: op, Outcome: outcome, Elapsed: elapsed})
}

// RecordStoreStats is forwarded synchronously: it is demand-driven and
// not on the operation hot path.
func (s *AsyncSink) RecordStoreStats(shardCount, keyCount int) {
	s.inner.RecordStoreStats(shardCount, keyCount)
}

// Close stops the pipeline after delivering already-queued events.
func (s *AsyncSink) Close() {
	s.queue.Close()
	s.drain.Wait()
}
