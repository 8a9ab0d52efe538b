// Package watch implements the notification registry of the tKV engine:
// per-key wait lists that let a caller suspend until a key's value
// satisfies a predicate, without polling and without blocking a worker
// thread beyond the waiting goroutine itself.
//
// The package focuses on:
//   - Exactly-once delivery of a single outcome per waiter (satisfied,
//     timed out, or cancelled), safe against races between a concurrent
//     wake and a concurrent cancellation
//   - A side table decoupled from the store's locking: predicates are
//     evaluated against value snapshots, never while the store's per-key
//     exclusion is held
//   - Bounded memory: a key's wait list is removed as soon as it drains
//
// Key Components:
//
//   - IRegistry: register/notify/cancel surface. Wait is the only
//     blocking call in the whole engine; it suspends on a channel select
//     until the predicate holds, the timeout elapses, or the context is
//     cancelled.
//
//   - Predicate: a closed (but extendable via Custom) set of conditions
//     over a value snapshot: Exists, Absent, ValueEquals, VersionChanged.
//
//   - Snapshot: the (value, version, exists) triple a predicate is
//     evaluated against. Snapshots carry deep-copied values, so predicate
//     evaluation never observes concurrent mutation.
//
// Internal Mechanisms:
//
//   - Registration order: a waiter is appended to the key's wait list
//     BEFORE the current snapshot is checked. A mutation that lands
//     between the two steps therefore either notifies the already-listed
//     waiter or is observed by the initial check; a wakeup cannot be
//     missed.
//
//   - Delivery: each waiter carries an atomic state flag. Whoever wins
//     the compare-and-swap (notifier, canceller, or timeout path) owns
//     the outcome; losers back off. A waiter that lost the timeout race
//     to a concurrent delivery still returns the satisfied outcome.
//
//   - Wait list lifecycle: lists live in an xsync.MapOf side table. A
//     drained list is tombstoned under its own lock and then removed from
//     the table; registration retries when it catches a tombstoned list.
//
// Thread-safety: all methods are safe for concurrent use.
package watch
