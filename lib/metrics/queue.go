package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// eventNode is a single element of the event queue's linked list.
type eventNode struct {
	event *Event
	next  atomic.Pointer[eventNode]
}

// eventQueue is an unbounded lock-free multi-producer single-consumer
// queue for metric events. Any number of goroutines may Push
// concurrently; a single consumer drains via Recv. Ordering between
// concurrent producers is determined by which push completes first.
type eventQueue struct {
	head   atomic.Pointer[eventNode]
	tail   atomic.Pointer[eventNode]
	out    chan *Event
	done   sync.WaitGroup
	closed atomic.Bool

	// condition variable so the consumer can sleep while idle
	mu   sync.Mutex
	cond *sync.Cond
}

func newEventQueue() *eventQueue {
	// sentinel node so head/tail are never nil
	sentinel := &eventNode{}

	q := &eventQueue{out: make(chan *Event)}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.done.Add(1)
	go q.consume()

	return q
}

// Push appends an event. Returns false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *eventQueue) Push(e *Event) bool {
	if e == nil || q.closed.Load() {
		return false
	}

	n := &eventNode{event: e}

	var backoff uint8
	for {
		tail := q.tail.Load()

		if tail.next.Load() == nil {
			if tail.next.CompareAndSwap(nil, n) {
				// appended; tail update may be helped by another producer
				q.tail.CompareAndSwap(tail, n)
				q.cond.Signal()
				return true
			}
		} else {
			// help a stalled producer move the tail forward
			q.tail.CompareAndSwap(tail, tail.next.Load())
		}

		// exponential backoff: spin under low contention, yield under high
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// consume moves events from the linked list to the output channel and
// frees consumed nodes.
func (q *eventQueue) consume() {
	defer q.done.Done()
	defer close(q.out)

	for {
		drained := true

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			drained = false

			e := next.event
			q.head.Store(next)
			q.out <- e
			next.event = nil
		}

		if drained && q.closed.Load() {
			return
		}

		if drained {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the consumer side of the queue.
func (q *eventQueue) Recv() <-chan *Event {
	return q.out
}

// Close stops accepting new events. Events already queued are still
// delivered; Close returns without waiting for them.
func (q *eventQueue) Close() {
	q.closed.Store(true)
	q.cond.Signal()
}
