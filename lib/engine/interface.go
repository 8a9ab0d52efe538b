package engine

import (
	"context"
	"time"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
	"github.com/tkv-io/tkv/lib/watch"
)

// --------------------------------------------------------------------------
// Request / Response
// --------------------------------------------------------------------------

// Request is the uniform inbound operation-call shape. A transport layer
// maps wire messages to this struct; embedders construct it directly.
type Request struct {
	// Op is the operation name (see OpID for the closed set).
	Op string

	// Key is the target key as raw bytes. Operations without a key
	// (echo, stats, keys) ignore it.
	Key string

	// Args are the operation's arguments in order, each an opaque byte
	// sequence. Numeric arguments are decimal-encoded.
	Args [][]byte

	// Kind optionally tags the value variant for operations that can
	// materialize a key (set, set:nx, append, increment, ...). Nil means
	// the operation's default.
	Kind *value.Kind

	// Timeout bounds blocking operations: 0 resolves immediately, a
	// negative value waits without deadline. Ignored by all non-blocking
	// operations.
	Timeout time.Duration
}

// Response is the uniform result of a dispatched operation.
type Response struct {
	// Payload is the operation-specific result value; nil for pure acks.
	Payload *value.Value

	// Outcome reports how a blocking wait resolved. Non-blocking
	// operations always report OutcomeSatisfied.
	Outcome watch.Outcome
}

// --------------------------------------------------------------------------
// Engine Interface
// --------------------------------------------------------------------------

// IEngine is the single entry point of the storage engine: it translates
// operation requests into store interactions, enforces the per-variant
// type contracts, and produces a uniform result/error shape.
type IEngine interface {
	// Dispatch executes one operation. All request-level failures are
	// returned as *Error values; ctx only affects blocking operations.
	Dispatch(ctx context.Context, req *Request) (*Response, error)

	// Store exposes the underlying sharded store for read-only
	// diagnostics and embedding (e.g. benchmarks).
	Store() store.IStore

	// Registry exposes the notification registry, mainly so embedders
	// can wait with custom predicates.
	Registry() watch.IRegistry

	// Close flushes background machinery (metrics pipeline). The engine
	// must not be used after Close.
	Close() error
}
