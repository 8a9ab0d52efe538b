package engine

import (
	"context"

	"github.com/tkv-io/tkv/lib/value"
	"github.com/tkv-io/tkv/lib/watch"
)

func init() {
	registerFeature(OpWait, 1, 2, opWait)
}

// waitPredicate builds the watch predicate from the request arguments.
// The first argument names the condition; "equals" and "version" consume
// one further argument.
func waitPredicate(e *engineImpl, req *Request) (watch.Predicate, error) {
	name := string(req.Args[0])
	rest := req.Args[1:]

	wantArgs := func(n int) error {
		if len(rest) != n {
			return NewError(ErrCInvalidArgument,
				"wait: condition %q expects %d extra argument(s), got %d", name, n, len(rest))
		}
		return nil
	}

	switch name {
	case "exists":
		return watch.Exists(), wantArgs(0)

	case "absent":
		return watch.Absent(), wantArgs(0)

	case "equals":
		if err := wantArgs(1); err != nil {
			return watch.Predicate{}, err
		}
		kind := value.KindBytes
		if req.Kind != nil {
			kind = *req.Kind
		}
		want, err := parseValue("wait", kind, rest)
		if err != nil {
			return watch.Predicate{}, err
		}
		return watch.ValueEquals(want), nil

	case "version":
		if err := wantArgs(1); err != nil {
			return watch.Predicate{}, err
		}
		since, err := parseInt("wait", rest[0])
		if err != nil {
			return watch.Predicate{}, err
		}
		if since < 0 {
			return watch.Predicate{}, NewError(ErrCInvalidArgument,
				"wait: version must not be negative, got %d", since)
		}
		return watch.VersionChanged(uint64(since)), nil

	case "changed":
		if err := wantArgs(0); err != nil {
			return watch.Predicate{}, err
		}
		// Anchor on the state observed now: an absent key "changes" by
		// appearing, an existing one by any version bump or deletion.
		_, version, loaded := e.store.Get(req.Key)
		if !loaded {
			return watch.Exists(), nil
		}
		return watch.VersionChanged(version), nil

	default:
		return watch.Predicate{}, NewError(ErrCInvalidArgument, "wait: unknown condition %q", name)
	}
}

// wait suspends the caller until the condition holds for the key, the
// request timeout elapses, or the context is cancelled. The response
// carries the terminal outcome and, when satisfied, the snapshot value.
func opWait(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
	pred, err := waitPredicate(e, req)
	if err != nil {
		return nil, err
	}

	outcome, snap := e.registry.Wait(ctx, req.Key, pred, req.Timeout)
	resp := &Response{Outcome: outcome}
	if outcome == watch.OutcomeSatisfied {
		resp.Payload = snap.Value
	}
	return resp, nil
}
