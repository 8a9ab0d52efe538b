package lockmgr

import (
	"context"
	"time"
)

// ILockManager defines the interface for an advisory lock provider.
type ILockManager interface {
	// AcquireLock tries to acquire the lock once, without blocking.
	// A ttl > 0 arms an automatic release after that duration; ttl == 0
	// means the lock is held until released explicitly.
	// Returns whether the lock was acquired and, if so, the owner ID
	// needed to release it.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (ok bool, ownerID []byte, err error)

	// AcquireLockBlocking acquires the lock, waiting up to wait for the
	// current holder to release it. wait == 0 degenerates to a single
	// non-blocking attempt; wait < 0 waits without a deadline.
	AcquireLockBlocking(ctx context.Context, key string, ttl, wait time.Duration) (ok bool, ownerID []byte, err error)

	// ReleaseLock releases the lock if ownerID matches the holder.
	// Returns true when the lock is gone afterwards (released by this
	// call, or already absent); false when a different owner holds it.
	ReleaseLock(ctx context.Context, key string, ownerID []byte) (ok bool, err error)
}
