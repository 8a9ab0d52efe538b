package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tkv-io/tkv/lib/value"
)

// putValue stores v under key, creating the entry if needed.
func putValue(t testing.TB, s IStore, key string, v *value.Value) uint64 {
	t.Helper()
	version, changed, err := s.Update(key, true, func(e *Entry, _ bool) (EntryOp, error) {
		e.Value = v
		return EntryStore, nil
	})
	if err != nil {
		t.Fatalf("Expected update of %q to succeed, got %v", key, err)
	}
	if !changed {
		t.Fatalf("Expected update of %q to report a change", key)
	}
	return version
}

func TestUpdateGet(t *testing.T) {
	s := NewShardedStore(nil)

	putValue(t, s, "test-key", value.NewBytes([]byte("test-value1")))

	v, version, loaded := s.Get("test-key")
	if !loaded {
		t.Fatal("Expected key to exist after update")
	}
	if version != 1 {
		t.Errorf("Expected version 1 after first store, got %d", version)
	}
	if !v.Equal(value.NewBytes([]byte("test-value1"))) {
		t.Errorf("Expected test-value1, got %s", v)
	}

	// overwriting bumps the version
	putValue(t, s, "test-key", value.NewBytes([]byte("test-value2")))
	v, version, _ = s.Get("test-key")
	if version != 2 {
		t.Errorf("Expected version 2 after second store, got %d", version)
	}
	if !v.Equal(value.NewBytes([]byte("test-value2"))) {
		t.Errorf("Expected test-value2, got %s", v)
	}

	// Get returns a deep copy, not a view into the store
	b, _ := v.BytesRef()
	(*b)[0] = 'X'
	v2, _, _ := s.Get("test-key")
	if !v2.Equal(value.NewBytes([]byte("test-value2"))) {
		t.Errorf("Expected stored value to be unaffected by mutation of the copy, got %s", v2)
	}

	if _, _, loaded := s.Get("nonexistent-key"); loaded {
		t.Error("Expected nonexistent key to report loaded=false")
	}
}

func TestUpdateAbsent(t *testing.T) {
	s := NewShardedStore(nil)

	// createIfAbsent=false never invokes the closure for absent keys
	invoked := false
	_, _, err := s.Update("nonexistent-key", false, func(e *Entry, loaded bool) (EntryOp, error) {
		invoked = true
		return EntryStore, nil
	})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
	if invoked {
		t.Error("Expected closure not to be invoked for absent key")
	}

	// a fresh entry that the closure keeps (or aborts) is not inserted
	_, changed, err := s.Update("kept", true, func(e *Entry, loaded bool) (EntryOp, error) {
		if loaded {
			t.Error("Expected fresh entry to report loaded=false")
		}
		return EntryKeep, nil
	})
	if err != nil || changed {
		t.Errorf("Expected no-op update, got changed=%v err=%v", changed, err)
	}
	if s.Has("kept") {
		t.Error("Expected key to stay absent after EntryKeep on a fresh entry")
	}

	boom := errors.New("boom")
	_, _, err = s.Update("aborted", true, func(e *Entry, loaded bool) (EntryOp, error) {
		e.Value = value.NewBytes([]byte("partial"))
		return EntryStore, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected closure error to pass through, got %v", err)
	}
	if s.Has("aborted") {
		t.Error("Expected key to stay absent after aborted update")
	}
}

func TestUpdateAbortLeavesEntryUntouched(t *testing.T) {
	s := NewShardedStore(nil)

	putValue(t, s, "test-key", value.NewInteger(7))

	boom := errors.New("boom")
	_, changed, err := s.Update("test-key", false, func(e *Entry, _ bool) (EntryOp, error) {
		n, _ := e.Value.IntegerRef()
		*n = 99
		return EntryStore, boom
	})
	if !errors.Is(err, boom) || changed {
		t.Fatalf("Expected aborted update, got changed=%v err=%v", changed, err)
	}

	// version must not have moved
	_, version, _ := s.Get("test-key")
	if version != 1 {
		t.Errorf("Expected version 1 after aborted update, got %d", version)
	}
}

func TestRemoveHas(t *testing.T) {
	s := NewShardedStore(nil)

	putValue(t, s, "test-key", value.NewBytes([]byte("v")))
	if !s.Has("test-key") {
		t.Error("Expected Has to report true for stored key")
	}

	prior, loaded := s.Remove("test-key")
	if !loaded {
		t.Fatal("Expected Remove to report the key existed")
	}
	if !prior.Equal(value.NewBytes([]byte("v"))) {
		t.Errorf("Expected prior value v, got %s", prior)
	}
	if s.Has("test-key") {
		t.Error("Expected key to be gone after Remove")
	}

	if _, loaded := s.Remove("test-key"); loaded {
		t.Error("Expected second Remove to report loaded=false")
	}
}

func TestEntryDelete(t *testing.T) {
	s := NewShardedStore(nil)

	putValue(t, s, "test-key", value.NewBytes([]byte("v")))

	_, changed, err := s.Update("test-key", false, func(e *Entry, _ bool) (EntryOp, error) {
		return EntryDelete, nil
	})
	if err != nil {
		t.Fatalf("Expected delete update to succeed, got %v", err)
	}
	if !changed {
		t.Error("Expected deletion of existing entry to report a change")
	}
	if s.Has("test-key") {
		t.Error("Expected key to be gone after EntryDelete")
	}
}

func TestKeyExpiry(t *testing.T) {
	s := NewShardedStore(nil)

	_, _, err := s.Update("short-lived", true, func(e *Entry, _ bool) (EntryOp, error) {
		e.Value = value.NewBytes([]byte("v"))
		e.ExpireAt = time.Now().Add(30 * time.Millisecond).UnixNano()
		return EntryStore, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if !s.Has("short-lived") {
		t.Error("Expected key to exist before its deadline")
	}

	time.Sleep(60 * time.Millisecond)

	if s.Has("short-lived") {
		t.Error("Expected key to be absent after its deadline")
	}
	if _, _, loaded := s.Get("short-lived"); loaded {
		t.Error("Expected Get to report an expired key as absent")
	}

	// an expired entry is presented to Update as absent, and recreating
	// the key restarts the version sequence
	_, _, err = s.Update("short-lived", true, func(e *Entry, loaded bool) (EntryOp, error) {
		if loaded {
			t.Error("Expected expired entry to report loaded=false")
		}
		e.Value = value.NewBytes([]byte("fresh"))
		return EntryStore, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_, version, _ := s.Get("short-lived")
	if version != 1 {
		t.Errorf("Expected recreated key to restart at version 1, got %d", version)
	}
}

func TestKeysPrefix(t *testing.T) {
	s := NewShardedStore(nil)

	for i := 0; i < 10; i++ {
		putValue(t, s, fmt.Sprintf("user:%d", i), value.NewBytes([]byte("v")))
	}
	putValue(t, s, "other", value.NewBytes([]byte("v")))

	if got := len(s.Keys("user:")); got != 10 {
		t.Errorf("Expected 10 keys with prefix user:, got %d", got)
	}
	if got := len(s.Keys("")); got != 11 {
		t.Errorf("Expected 11 keys in total, got %d", got)
	}
	if got := len(s.Keys("missing:")); got != 0 {
		t.Errorf("Expected 0 keys with prefix missing:, got %d", got)
	}
	if s.Len() != 11 {
		t.Errorf("Expected Len 11, got %d", s.Len())
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := NewShardedStore(nil)

	const (
		workers    = 16
		iterations = 1000
	)

	// all workers increment the same integer entry; per-key exclusion
	// must make the final count exact
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_, _, err := s.Update("shared-counter", true, func(e *Entry, loaded bool) (EntryOp, error) {
					if !loaded {
						e.Value = value.NewInteger(0)
					}
					n, _ := e.Value.IntegerRef()
					*n++
					return EntryStore, nil
				})
				if err != nil {
					t.Errorf("Expected concurrent update to succeed, got %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, version, _ := s.Get("shared-counter")
	if !v.Equal(value.NewInteger(workers * iterations)) {
		t.Errorf("Expected final count %d, got %s", workers*iterations, v)
	}
	if version != workers*iterations {
		t.Errorf("Expected version %d, got %d", workers*iterations, version)
	}
}

func TestStats(t *testing.T) {
	s := NewShardedStore(&Options{NumShards: 5})

	stats := s.Stats()

	// shard count is rounded up to a power of two
	if stats.ShardCount != 8 {
		t.Errorf("Expected 8 shards for requested 5, got %d", stats.ShardCount)
	}

	for i := 0; i < 1000; i++ {
		putValue(t, s, fmt.Sprintf("test-key-%d", i), value.NewBytes([]byte("v")))
	}

	stats = s.Stats()
	if stats.KeyCount != 1000 {
		t.Errorf("Expected 1000 keys, got %d", stats.KeyCount)
	}
	if len(stats.ShardKeys) != 8 {
		t.Errorf("Expected 8 shard counters, got %d", len(stats.ShardKeys))
	}

	total := 0
	for _, n := range stats.ShardKeys {
		total += n
	}
	if total != 1000 {
		t.Errorf("Expected shard counters to sum to 1000, got %d", total)
	}

	// the seeded hash should spread keys reasonably evenly
	if stats.Quality.DistributionQuality < 0.5 {
		t.Errorf("Expected distribution quality >= 0.5, got %f", stats.Quality.DistributionQuality)
	}
}
