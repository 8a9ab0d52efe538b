// Package store implements the concurrent sharded Key->Entry mapping of
// the tKV engine with per-key exclusive-access discipline.
//
// The package focuses on:
//   - Low-contention concurrent access through sharding
//   - A scoped update primitive that serializes all mutations of one key
//     while letting unrelated keys proceed fully in parallel
//   - Lazy, access-time expiry of entries carrying a TTL deadline
//
// Key Components:
//
//   - IStore: The public interface. All mutation goes through Update (and
//     Remove); reads go through Get/Has. Callers never hold a reference to
//     an Entry outside the Update scope.
//
//   - Entry: The stored unit per key: the typed Value, a version counter
//     bumped on every successful mutation, and an optional expiry deadline.
//
//   - shard: A partition of the key space. The key space is split across a
//     fixed, power-of-two number of shards by a seeded FNV-1a hash of the
//     key bytes. Each shard owns an independent concurrent map
//     (xsync.MapOf); per-key atomicity comes from the map's Compute
//     primitive, which executes the update closure exclusively for that
//     key.
//
// Internal Mechanisms:
//
//   - Sharding Strategy: Keys are hashed with a store-specific random seed
//     so that shard distribution cannot be predicted or attacked from the
//     outside. The hash is right-shifted by 7 bits before masking to use
//     higher-quality bits for distribution.
//
//   - Versioning: Every successful mutation increments the entry's version
//     counter. Versions start at 1 on creation and are strictly monotonic
//     per key for the lifetime of the entry. The notification layer uses
//     them to evaluate "changed since" predicates cheaply.
//
//   - Expiry: An entry may carry an absolute unix-nano deadline. Expired
//     entries are treated as absent by all operations and are removed on
//     the next access that observes the expiry; there is no background
//     sweeper.
//
// Thread-safety: All IStore methods are safe for concurrent use. Update
// closures run while the per-key exclusion is held and therefore MUST NOT
// block, suspend, or call back into the store.
package store
