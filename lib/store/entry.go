package store

import "github.com/tkv-io/tkv/lib/value"

// Entry is the unit stored per key: the typed Value plus bookkeeping.
type Entry struct {
	// Value is the entry's typed value. Mutating it is only legal inside
	// an Update closure.
	Value *value.Value

	// Version counts successful mutations. It starts at 1 when the entry
	// is created and increases by 1 on every EntryStore outcome.
	Version uint64

	// ExpireAt is an absolute unix-nano deadline after which the entry is
	// treated as absent. Zero means no expiry.
	ExpireAt int64
}

// expired reports whether the entry's deadline has passed at time now
// (unix nanos).
func (e *Entry) expired(now int64) bool {
	return e.ExpireAt != 0 && now >= e.ExpireAt
}
