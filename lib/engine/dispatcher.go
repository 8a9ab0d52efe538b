package engine

import (
	"context"
	"errors"
	"time"

	"github.com/tkv-io/tkv/lib/logging"
	"github.com/tkv-io/tkv/lib/metrics"
	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
	"github.com/tkv-io/tkv/lib/watch"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the engine during initialization.
type Options struct {
	// Store configures the sharded store (nil = defaults).
	Store *store.Options

	// Sink receives operation and store events (nil = no-op sink).
	Sink metrics.Sink
}

// --------------------------------------------------------------------------
// Feature Table
// --------------------------------------------------------------------------

// feature describes one operation: its argument arity and its
// implementation. maxArgs < 0 means unbounded.
type feature struct {
	id      OpID
	minArgs int
	maxArgs int
	apply   func(ctx context.Context, e *engineImpl, req *Request) (*Response, error)
}

var features = map[OpID]feature{}

// registerFeature is called from the ops_*.go init functions to populate
// the dispatch table.
func registerFeature(id OpID, minArgs, maxArgs int, apply func(ctx context.Context, e *engineImpl, req *Request) (*Response, error)) {
	features[id] = feature{id: id, minArgs: minArgs, maxArgs: maxArgs, apply: apply}
}

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

type engineImpl struct {
	store    store.IStore
	registry watch.IRegistry
	sink     metrics.Sink
	logger   logging.ILogger
}

// snapshotSource adapts the store to the registry's snapshot interface.
type snapshotSource struct {
	st store.IStore
}

func (s snapshotSource) Snapshot(key string) watch.Snapshot {
	v, version, loaded := s.st.Get(key)
	return watch.Snapshot{Value: v, Version: version, Exists: loaded}
}

// New creates a new engine with the specified options (optional).
func New(opts *Options) IEngine {
	if opts == nil {
		opts = &Options{}
	}
	sink := opts.Sink
	if sink == nil {
		sink = metrics.NewNoopSink()
	}

	st := store.NewShardedStore(opts.Store)
	e := &engineImpl{
		store:    st,
		registry: watch.NewRegistry(snapshotSource{st: st}),
		sink:     sink,
		logger:   logging.GetLogger("engine"),
	}

	e.logger.Infof("engine ready (%d shards, %d operations)", st.Stats().ShardCount, len(features))
	return e
}

func (e *engineImpl) Store() store.IStore {
	return e.store
}

func (e *engineImpl) Registry() watch.IRegistry {
	return e.registry
}

func (e *engineImpl) Close() error {
	if s, ok := e.sink.(*metrics.AsyncSink); ok {
		s.Close()
	}
	return nil
}

func (e *engineImpl) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	id, ok := OpIDFromString(req.Op)
	if !ok {
		e.sink.RecordOperation(req.Op, metrics.OutcomeError, time.Since(start))
		return nil, NewError(ErrCUnknownOperation, "unknown operation %q", req.Op)
	}

	f := features[id]
	if len(req.Args) < f.minArgs || (f.maxArgs >= 0 && len(req.Args) > f.maxArgs) {
		e.sink.RecordOperation(id.Name(), metrics.OutcomeError, time.Since(start))
		return nil, NewError(ErrCInvalidArgument,
			"%s: wrong number of arguments (got %d)", id.Name(), len(req.Args))
	}

	resp, err := f.apply(ctx, e, req)
	e.sink.RecordOperation(id.Name(), outcomeLabel(resp, err), time.Since(start))
	return resp, err
}

// outcomeLabel maps a dispatch result to its metrics label.
func outcomeLabel(resp *Response, err error) metrics.Outcome {
	if err != nil {
		return metrics.OutcomeError
	}
	if resp != nil {
		switch resp.Outcome {
		case watch.OutcomeTimedOut:
			return metrics.OutcomeTimeout
		case watch.OutcomeCancelled:
			return metrics.OutcomeCancelled
		}
	}
	return metrics.OutcomeOK
}

// --------------------------------------------------------------------------
// Shared Helpers
// --------------------------------------------------------------------------

// notify hands a fresh snapshot of key to the notification registry.
// Must be called after the store's per-key exclusion is released.
func (e *engineImpl) notify(key string) {
	v, version, loaded := e.store.Get(key)
	e.registry.Notify(key, watch.Snapshot{Value: v, Version: version, Exists: loaded})
}

// update runs fn under the per-key exclusion and, if the stored state
// changed, notifies the registry afterwards. The store's not-found
// signal is translated into the engine's error shape.
func (e *engineImpl) update(key string, createIfAbsent bool, fn store.UpdateFunc) (uint64, error) {
	version, changed, err := e.store.Update(key, createIfAbsent, fn)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, NewError(ErrCKeyNotFound, "key %q not found", key)
		}
		return 0, err
	}
	if changed {
		e.notify(key)
	}
	return version, nil
}

// ack is the empty success response.
func ack() *Response {
	return &Response{}
}

// respond wraps a payload value.
func respond(v *value.Value) *Response {
	return &Response{Payload: v}
}

// errTypeMismatch builds the uniform type-mismatch error.
func errTypeMismatch(key string, got value.Kind, want string) error {
	return NewError(ErrCTypeMismatch, "key %q holds %s, operation requires %s", key, got, want)
}
