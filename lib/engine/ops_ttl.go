package engine

import (
	"context"
	"time"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpExpire, 1, 1, opExpire)
	registerFeature(OpPersist, 0, 0, opPersist)
	registerFeature(OpTTL, 0, 0, opTTL)
}

// expire arms (or re-arms) the key's deadline, given in milliseconds
// from now. The key must exist; a non-positive duration is rejected
// instead of deleting eagerly.
func opExpire(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	ms, err := parseInt("expire", req.Args[0])
	if err != nil {
		return nil, err
	}
	if ms <= 0 {
		return nil, NewError(ErrCInvalidArgument, "expire: duration must be positive, got %dms", ms)
	}

	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond).UnixNano()
	_, err = e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		en.ExpireAt = deadline
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return ack(), nil
}

// persist clears the key's deadline. The payload reports whether a
// deadline was actually armed.
func opPersist(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var hadDeadline bool
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		if en.ExpireAt == 0 {
			return store.EntryKeep, nil
		}
		hadDeadline = true
		en.ExpireAt = 0
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewBoolean(hadDeadline)), nil
}

// ttl reports the remaining lifetime in milliseconds, or -1 for a key
// without a deadline.
func opTTL(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	remaining := int64(-1)
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		if en.ExpireAt != 0 {
			left := time.Until(time.Unix(0, en.ExpireAt)) / time.Millisecond
			if left < 0 {
				left = 0
			}
			remaining = int64(left)
		}
		return store.EntryKeep, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(remaining)), nil
}
