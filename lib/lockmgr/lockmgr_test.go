package lockmgr

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tkv-io/tkv/lib/engine"
)

func newTestManager(t *testing.T) (ILockManager, engine.IEngine) {
	t.Helper()
	e := engine.New(nil)
	t.Cleanup(func() { e.Close() })
	return NewLockManager(e), e
}

func TestAcquireRelease(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	ok, ownerID, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}
	if !ok || len(ownerID) == 0 {
		t.Fatalf("Expected lock to be acquired with an owner ID, got ok=%v", ok)
	}

	// a second contender must be turned away
	ok2, _, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil {
		t.Fatalf("Expected second acquire to succeed, got %v", err)
	}
	if ok2 {
		t.Error("Expected second acquire on a held lock to fail")
	}

	released, err := lm.ReleaseLock(ctx, "resource:1", ownerID)
	if err != nil || !released {
		t.Fatalf("Expected release to succeed, got ok=%v err=%v", released, err)
	}

	// after release the lock is free again
	ok3, _, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil || !ok3 {
		t.Errorf("Expected re-acquire after release to succeed, got ok=%v err=%v", ok3, err)
	}
}

func TestReleaseOwnership(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	_, ownerID, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil {
		t.Fatal(err)
	}

	// a wrong owner ID must not release the lock
	released, err := lm.ReleaseLock(ctx, "resource:1", []byte("not-the-owner"))
	if err != nil {
		t.Fatal(err)
	}
	if released {
		t.Error("Expected release with wrong owner ID to be refused")
	}

	// releasing an absent lock reports success
	released, err = lm.ReleaseLock(ctx, "resource:2", ownerID)
	if err != nil || !released {
		t.Errorf("Expected release of absent lock to report success, got ok=%v err=%v", released, err)
	}
}

func TestLockTTL(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	ok, _, err := lm.AcquireLock(ctx, "resource:1", 50*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("Expected acquire with TTL to succeed, got ok=%v err=%v", ok, err)
	}

	// before the deadline the lock is held
	ok2, _, _ := lm.AcquireLock(ctx, "resource:1", 0)
	if ok2 {
		t.Error("Expected lock to be held before its TTL")
	}

	time.Sleep(100 * time.Millisecond)

	// after the deadline the lock frees itself
	ok3, _, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil || !ok3 {
		t.Errorf("Expected lock to be free after its TTL, got ok=%v err=%v", ok3, err)
	}
}

func TestAcquireBlockingAfterTTL(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	ok, _, err := lm.AcquireLock(ctx, "resource:1", 50*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("Expected acquire with TTL to succeed, got ok=%v err=%v", ok, err)
	}

	// expiry frees the lock without a release notification; the blocked
	// acquirer must still get through well before its wait runs out
	start := time.Now()
	ok2, ownerID, err := lm.AcquireLockBlocking(ctx, "resource:1", 0, 2*time.Second)
	if err != nil || !ok2 {
		t.Fatalf("Expected blocking acquire to win after the TTL, got ok=%v err=%v", ok2, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected blocking acquire to re-race at the holder's expiry, took %s", elapsed)
	}

	if released, err := lm.ReleaseLock(ctx, "resource:1", ownerID); err != nil || !released {
		t.Errorf("Expected release to succeed, got ok=%v err=%v", released, err)
	}
}

func TestAcquireBlocking(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	_, ownerID, err := lm.AcquireLock(ctx, "resource:1", 0)
	if err != nil {
		t.Fatal(err)
	}

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)

	go func() {
		ok, _, err := lm.AcquireLockBlocking(ctx, "resource:1", 0, 2*time.Second)
		done <- result{ok, err}
	}()

	// the blocked acquirer must not get through while the lock is held
	select {
	case res := <-done:
		t.Fatalf("Expected blocking acquire to wait, got ok=%v err=%v", res.ok, res.err)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := lm.ReleaseLock(ctx, "resource:1", ownerID); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-done:
		if res.err != nil || !res.ok {
			t.Errorf("Expected blocking acquire to win after release, got ok=%v err=%v", res.ok, res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected blocking acquire to be woken by release")
	}
}

func TestAcquireBlockingTimeout(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	if _, _, err := lm.AcquireLock(ctx, "resource:1", 0); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	ok, _, err := lm.AcquireLockBlocking(ctx, "resource:1", 0, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Expected blocking acquire to give up on a held lock")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected blocking acquire to wait its budget, returned after %s", elapsed)
	}
}

func TestMutualExclusion(t *testing.T) {
	lm, _ := newTestManager(t)
	ctx := context.Background()

	const workers = 8
	const rounds = 20

	// the lock guards a plain int; races here would trip -race and the
	// holders counter
	var critical int
	var holders atomic.Int32

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				ok, ownerID, err := lm.AcquireLockBlocking(ctx, "resource:1", 0, 5*time.Second)
				if err != nil || !ok {
					t.Errorf("Expected blocking acquire to succeed, got ok=%v err=%v", ok, err)
					return
				}

				if holders.Add(1) != 1 {
					t.Error("Expected at most one holder inside the critical section")
				}
				critical++
				holders.Add(-1)

				if _, err := lm.ReleaseLock(ctx, "resource:1", ownerID); err != nil {
					t.Errorf("Expected release to succeed, got %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if critical != workers*rounds {
		t.Errorf("Expected %d critical sections, got %d", workers*rounds, critical)
	}
}
