package store

import (
	"runtime"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tkv-io/tkv/lib/value"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the sharded store during initialization.
type Options struct {
	// NumShards is the number of shards (0 = auto). The value is rounded
	// up to the next power of two.
	NumShards int
}

// DefaultOptions returns the default store options.
func DefaultOptions() *Options {
	return &Options{
		NumShards: runtime.NumCPU(), // auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Core store structure
// --------------------------------------------------------------------------

// shard is a partition of the key space with its own independent
// concurrent map. Per-key atomicity is provided by the map's Compute
// primitive.
type shard struct {
	data *xsync.MapOf[string, *Entry]
}

type storeImpl struct {
	seed   uint64
	shards []*shard
	mask   uint64 // len(shards)-1, len is a power of two
}

// NewShardedStore creates a new sharded store with the specified options
// (optional).
//
// Thread-safety: This function is not thread-safe and should only be
// called once during initialization; the returned store is safe for
// concurrent use.
func NewShardedStore(opts *Options) IStore {
	if opts == nil {
		opts = DefaultOptions()
	}

	numShards := nextPowerOfTwo(opts.NumShards)
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{data: xsync.NewMapOf[string, *Entry]()}
	}

	return &storeImpl{
		seed:   generateSeed(),
		shards: shards,
		mask:   uint64(numShards - 1),
	}
}

// shardFor returns the shard owning the given key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *storeImpl) shardFor(key string) *shard {
	// Shift right by 7 bits to use higher-quality bits for distribution
	return s.shards[(hashKey(key, s.seed)>>7)&s.mask]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (*value.Value, uint64, bool) {
	var (
		v       *value.Value
		version uint64
		loaded  bool
	)
	now := time.Now().UnixNano()

	s.shardFor(key).data.Compute(key, func(e *Entry, exists bool) (*Entry, bool) {
		if !exists {
			return nil, true
		}
		if e.expired(now) {
			// expired entries are removed on first observation
			return e, true
		}
		v = e.Value.Clone()
		version = e.Version
		loaded = true
		return e, false
	})

	return v, version, loaded
}

func (s *storeImpl) Update(key string, createIfAbsent bool, fn UpdateFunc) (uint64, bool, error) {
	var (
		version  uint64
		changed  bool
		outerErr error
	)
	now := time.Now().UnixNano()

	s.shardFor(key).data.Compute(key, func(old *Entry, exists bool) (*Entry, bool) {
		// an expired entry is presented to the closure as absent; the
		// stale entry itself is dropped regardless of the outcome
		wasExpired := exists && old.expired(now)
		loaded := exists && !wasExpired

		if !loaded && !createIfAbsent {
			outerErr = ErrKeyNotFound
			return old, true
		}

		e := old
		if !loaded {
			e = &Entry{}
		}

		op, err := fn(e, loaded)
		if err != nil {
			outerErr = err
			return old, !loaded
		}

		switch op {
		case EntryStore:
			e.Version++
			version = e.Version
			changed = true
			return e, false
		case EntryDelete:
			changed = loaded
			return old, true
		default: // EntryKeep
			// a fresh (or expired) entry that was not stored is dropped
			return old, !loaded
		}
	})

	return version, changed, outerErr
}

func (s *storeImpl) Remove(key string) (*value.Value, bool) {
	var (
		prior  *value.Value
		loaded bool
	)
	now := time.Now().UnixNano()

	s.shardFor(key).data.Compute(key, func(e *Entry, exists bool) (*Entry, bool) {
		if !exists {
			return nil, true
		}
		if !e.expired(now) {
			prior = e.Value.Clone()
			loaded = true
		}
		return e, true
	})

	return prior, loaded
}

func (s *storeImpl) Has(key string) bool {
	var loaded bool
	now := time.Now().UnixNano()

	s.shardFor(key).data.Compute(key, func(e *Entry, exists bool) (*Entry, bool) {
		if !exists {
			return nil, true
		}
		if e.expired(now) {
			return e, true
		}
		loaded = true
		return e, false
	})

	return loaded
}

func (s *storeImpl) Keys(prefix string) []string {
	// Range does not hold the per-key exclusion, so entry fields must not
	// be inspected here; expiry is re-checked per key via Has.
	var candidates []string
	for _, sh := range s.shards {
		sh.data.Range(func(key string, _ *Entry) bool {
			if strings.HasPrefix(key, prefix) {
				candidates = append(candidates, key)
			}
			return true
		})
	}

	keys := candidates[:0]
	for _, key := range candidates {
		if s.Has(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *storeImpl) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.data.Size()
	}
	return total
}

func (s *storeImpl) Stats() Stats {
	shardKeys := make([]int, len(s.shards))
	sizes := make([]float64, len(s.shards))
	total := 0
	for i, sh := range s.shards {
		n := sh.data.Size()
		shardKeys[i] = n
		sizes[i] = float64(n)
		total += n
	}

	return Stats{
		ShardCount: len(s.shards),
		KeyCount:   total,
		ShardKeys:  shardKeys,
		Quality:    NewDistributionStats(sizes),
	}
}
