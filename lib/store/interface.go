package store

import (
	"errors"

	"github.com/tkv-io/tkv/lib/value"
)

// ErrKeyNotFound is returned by Update when createIfAbsent is false and
// the key is absent (or expired). The update closure is never invoked in
// that case.
var ErrKeyNotFound = errors.New("key not found")

// EntryOp tells the store what to do with the entry after an update
// closure returns.
type EntryOp uint8

const (
	// EntryKeep leaves the entry untouched (read-only access). The
	// version counter is not bumped and a fresh entry is discarded.
	EntryKeep EntryOp = iota
	// EntryStore keeps the (possibly mutated) entry and bumps its
	// version counter.
	EntryStore
	// EntryDelete removes the entry from the store.
	EntryDelete
)

// UpdateFunc is the scoped exclusive-access closure passed to Update.
//
// The closure receives the key's entry and whether the key existed before
// the call. If the key was absent and createIfAbsent is true, the entry is
// a fresh zero entry (nil Value, version 0) that the closure is expected
// to populate. The closure runs while the per-key exclusion is held and
// must complete synchronously without blocking.
//
// Returning an error aborts the update: the entry is left exactly as it
// was (a fresh entry is not inserted) and the error is passed through to
// the caller unchanged.
type UpdateFunc func(e *Entry, loaded bool) (EntryOp, error)

// Stats describes the store's occupancy, per shard and in total.
type Stats struct {
	ShardCount int               `json:"shard_count"`
	KeyCount   int               `json:"key_count"`
	ShardKeys  []int             `json:"shard_keys"`
	Quality    DistributionStats `json:"distribution"`
}

// IStore is the interface for the concurrent Key->Entry mapping.
//
// The store itself cannot fail: errors surfacing from Update are produced
// by the closure (or the ErrKeyNotFound signal) and passed through.
type IStore interface {
	// Get returns a deep copy of the value stored for key together with
	// the entry's current version. The boolean return value indicates
	// whether the key exists (and is not expired).
	Get(key string) (v *value.Value, version uint64, loaded bool)

	// Update gives fn scoped exclusive access to the entry for key. If
	// createIfAbsent is false and the key is absent, fn is never invoked
	// and ErrKeyNotFound is returned. On success the entry's new version
	// is returned (0 if the entry was deleted or kept untouched) along
	// with whether the stored state changed (EntryStore, or EntryDelete
	// of an existing entry).
	Update(key string, createIfAbsent bool, fn UpdateFunc) (version uint64, changed bool, err error)

	// Remove deletes the entry for key and returns a deep copy of its
	// prior value, if any.
	Remove(key string) (prior *value.Value, loaded bool)

	// Has reports whether key exists (and is not expired).
	Has(key string) bool

	// Keys returns all keys with the given prefix. An empty prefix
	// matches every key. The listing is a point-in-time approximation:
	// keys mutated concurrently may or may not be included.
	Keys(prefix string) []string

	// Len returns the number of stored keys, including entries whose
	// expiry has not been observed yet.
	Len() int

	// Stats returns shard-level occupancy counters and distribution
	// quality metrics.
	Stats() Stats
}
