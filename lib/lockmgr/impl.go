package lockmgr

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/tkv-io/tkv/lib/engine"
	"github.com/tkv-io/tkv/lib/watch"
)

// expiryGrace pads a TTL-clamped wait so the holder's deadline has
// definitely passed when the acquirer re-races.
const expiryGrace = 5 * time.Millisecond

type lockMgrImpl struct {
	engine engine.IEngine
}

// NewLockManager creates a lock manager on top of the given engine.
func NewLockManager(e engine.IEngine) ILockManager {
	return &lockMgrImpl{engine: e}
}

func (lm *lockMgrImpl) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	ownerID, err := generateOwnerID()
	if err != nil {
		return false, nil, err
	}

	// Only one contender can create the key.
	resp, err := lm.engine.Dispatch(ctx, &engine.Request{
		Op:   engine.OpSetNX.Name(),
		Key:  key,
		Args: [][]byte{ownerID},
	})
	if err != nil {
		return false, nil, err
	}
	if resp.Payload == nil {
		return false, nil, nil
	}
	created, _ := resp.Payload.BooleanRef()
	if created == nil || !*created {
		return false, nil, nil
	}

	if ttl > 0 {
		ms := strconv.FormatInt(ttl.Milliseconds(), 10)
		if _, err := lm.engine.Dispatch(ctx, &engine.Request{
			Op:   engine.OpExpire.Name(),
			Key:  key,
			Args: [][]byte{[]byte(ms)},
		}); err != nil {
			// Best effort rollback so the lock cannot outlive a failed
			// deadline setup.
			_, _ = lm.ReleaseLock(ctx, key, ownerID)
			return false, nil, err
		}
	}

	return true, ownerID, nil
}

func (lm *lockMgrImpl) AcquireLockBlocking(ctx context.Context, key string, ttl, wait time.Duration) (bool, []byte, error) {
	var deadline time.Time
	if wait > 0 {
		deadline = time.Now().Add(wait)
	}

	for {
		ok, ownerID, err := lm.AcquireLock(ctx, key, ttl)
		if ok || err != nil {
			return ok, ownerID, err
		}
		if wait == 0 {
			return false, nil, nil
		}

		// Park until the current holder releases, then race for the key
		// again.
		timeout := wait
		if wait > 0 {
			timeout = time.Until(deadline)
			if timeout <= 0 {
				return false, nil, nil
			}
		}

		// A lock freed by its TTL emits no notification (expiry is
		// lazy), so the wait is clamped to the holder's remaining
		// lifetime and the loop re-races as soon as it fires.
		resp, err := lm.engine.Dispatch(ctx, &engine.Request{
			Op:  engine.OpTTL.Name(),
			Key: key,
		})
		if err != nil {
			if engine.CodeOf(err) != engine.ErrCKeyNotFound {
				return false, nil, err
			}
			// freed between the attempt and the lookup
			continue
		}
		if resp.Payload != nil {
			if rem, ok := resp.Payload.IntegerRef(); ok && *rem >= 0 {
				holderTTL := time.Duration(*rem)*time.Millisecond + expiryGrace
				if timeout < 0 || holderTTL < timeout {
					timeout = holderTTL
				}
			}
		}

		resp, err = lm.engine.Dispatch(ctx, &engine.Request{
			Op:      engine.OpWait.Name(),
			Key:     key,
			Args:    [][]byte{[]byte("absent")},
			Timeout: timeout,
		})
		if err != nil {
			return false, nil, err
		}
		if resp.Outcome == watch.OutcomeCancelled {
			return false, nil, ctx.Err()
		}
		// OutcomeTimedOut falls through to one more acquire attempt; the
		// deadline check above ends the loop once the budget is spent.
	}
}

func (lm *lockMgrImpl) ReleaseLock(ctx context.Context, key string, ownerID []byte) (bool, error) {
	resp, err := lm.engine.Dispatch(ctx, &engine.Request{
		Op:  engine.OpGet.Name(),
		Key: key,
	})
	if err != nil {
		return false, err
	}

	// Already gone counts as released.
	if resp.Payload == nil {
		return true, nil
	}

	held, ok := resp.Payload.BytesRef()
	if !ok || !bytes.Equal(*held, ownerID) {
		return false, nil
	}

	_, err = lm.engine.Dispatch(ctx, &engine.Request{
		Op:  engine.OpDelete.Name(),
		Key: key,
	})
	return err == nil, err
}
