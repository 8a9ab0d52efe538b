package metrics

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestBasicOperations tests basic push and consume functionality
func TestBasicOperations(t *testing.T) {
	q := newEventQueue()
	defer q.Close()

	// Push 10 events
	for i := 0; i < 10; i++ {
		if !q.Push(&Event{Op: fmt.Sprintf("op-%d", i)}) {
			t.Fatalf("Failed to push event %d", i)
		}
	}

	// Consume 10 events
	for i := 0; i < 10; i++ {
		select {
		case e := <-q.Recv():
			if e.Op != fmt.Sprintf("op-%d", i) {
				t.Errorf("Expected op-%d, got %v", i, e.Op)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", i)
		}
	}

	// Make sure queue is empty
	select {
	case e := <-q.Recv():
		t.Errorf("Queue should be empty, but got %v", e)
	case <-time.After(10 * time.Millisecond):
		// Expected timeout, queue is empty
	}
}

// TestConcurrentProducers verifies the queue works correctly with multiple producers
func TestConcurrentProducers(t *testing.T) {
	q := newEventQueue()
	defer q.Close()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	// Use a map to track received events
	var mu sync.Mutex
	received := make(map[string]bool)

	// Start a consumer goroutine
	done := make(chan struct{})
	receivedCount := 0

	go func() {
		defer close(done)

		for receivedCount < totalItems {
			select {
			case e := <-q.Recv():
				if e == nil {
					t.Errorf("Received nil event")
					return
				}

				mu.Lock()
				if received[e.Op] {
					t.Errorf("Duplicate event received: %v", e.Op)
				}
				received[e.Op] = true
				receivedCount++
				mu.Unlock()
			case <-time.After(2 * time.Second):
				t.Errorf("Timeout waiting for events, received %d of %d", receivedCount, totalItems)
				return
			}
		}
	}()

	// Start producers
	var wg sync.WaitGroup
	wg.Add(numProducers)

	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()

			for i := 0; i < itemsPerProducer; i++ {
				e := &Event{Op: fmt.Sprintf("producer-%d-event-%d", producerID, i)}
				if !q.Push(e) {
					t.Errorf("Producer %d failed to push event %d", producerID, i)
				}

				// Add some randomness to producer timing
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}

	// Wait for all producers to finish
	wg.Wait()

	// Wait for consumer to process all events
	select {
	case <-done:
		// Consumer finished
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for consumer to finish")
	}

	// Verify we got all expected events
	if receivedCount != totalItems {
		t.Errorf("Expected %d events, got %d", totalItems, receivedCount)
	}
}

// TestCloseQueue verifies closing behavior
func TestCloseQueue(t *testing.T) {
	q := newEventQueue()

	// Push some events
	for i := 0; i < 5; i++ {
		q.Push(&Event{Op: fmt.Sprintf("op-%d", i)})
	}

	// Close the queue
	q.Close()

	// Verify we can't push after closing
	if q.Push(&Event{Op: "too-late"}) {
		t.Error("Should not be able to push after queue is closed")
	}

	// Verify we can still read events that were already queued
	drained := 0
	for e := range q.Recv() {
		if e.Op != fmt.Sprintf("op-%d", drained) {
			t.Errorf("Expected op-%d, got %v", drained, e.Op)
		}
		drained++
	}
	if drained != 5 {
		t.Errorf("Expected to drain 5 events after close, got %d", drained)
	}
}

// TestOrderingSingleProducer tests that a single producer's events are
// received in push order
func TestOrderingSingleProducer(t *testing.T) {
	q := newEventQueue()
	defer q.Close()

	const itemCount = 10000
	go func() {
		for i := 0; i < itemCount; i++ {
			q.Push(&Event{Elapsed: time.Duration(i)})
		}
	}()

	prev := time.Duration(-1)
	for i := 0; i < itemCount; i++ {
		select {
		case e := <-q.Recv():
			if e.Elapsed < prev {
				t.Fatalf("Event out of order: %d after %d", e.Elapsed, prev)
			}
			prev = e.Elapsed
		case <-time.After(1 * time.Second):
			t.Fatalf("Timeout waiting for event %d", i)
		}
	}
}

// TestAsyncSink verifies the full pipeline from RecordOperation to the
// wrapped sink, including the drain on Close
func TestAsyncSink(t *testing.T) {
	var count atomic.Int64
	inner := countingSink{ops: &count}

	s := NewAsyncSink(inner)

	const numProducers = 8
	const eventsPerProducer = 500

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerProducer; i++ {
				s.RecordOperation("get", OutcomeOK, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	// Close must deliver everything that was recorded before it
	s.Close()

	if got := count.Load(); got != numProducers*eventsPerProducer {
		t.Errorf("Expected %d recorded operations after Close, got %d",
			numProducers*eventsPerProducer, got)
	}
}

type countingSink struct {
	ops *atomic.Int64
}

func (s countingSink) RecordOperation(string, Outcome, time.Duration) { s.ops.Add(1) }
func (s countingSink) RecordStoreStats(int, int)                      {}

// BenchmarkSingleProducer benchmarks the queue with a single producer
func BenchmarkSingleProducer(b *testing.B) {
	q := newEventQueue()
	defer q.Close()

	// Start consumer
	go func() {
		for range q.Recv() {
			// Just consume
		}
	}()

	e := &Event{Op: "bench"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(e)
	}
}

// BenchmarkMultiProducer benchmarks the queue with multiple producers
func BenchmarkMultiProducer(b *testing.B) {
	q := newEventQueue()
	defer q.Close()

	// Start consumer
	go func() {
		for range q.Recv() {
			// Just consume
		}
	}()

	e := &Event{Op: "bench"}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Push(e)
		}
	})
}
