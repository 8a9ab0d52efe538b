// Package lockmgr implements advisory locks on top of the engine's
// conditional operations. It keeps no state of its own: every lock
// lives as a regular key in the engine, so any number of managers
// created over the same engine coordinate correctly.
//
// Implementation Approach:
//
//	Lock acquisition uses the engine's set:nx operation, which creates
//	the key only if it is absent. The stored value is a randomly
//	generated owner ID identifying the holder; a successful create
//	means the lock is held. An optional TTL arms the key's deadline so
//	a crashed holder cannot deadlock the resource.
//
//	Blocking acquisition combines this with the engine's wait
//	operation: when the key is already held, the caller parks on the
//	"absent" condition and retries once the key disappears (released
//	or expired).
//
//	Release verifies ownership by comparing the stored value against
//	the caller's owner ID before deleting the key. Releasing a lock
//	that no longer exists reports success, since the desired state
//	already holds.
//
// Thread-safety: all state lives in the engine, which serializes
// access per key. The manager itself is stateless and safe for
// concurrent use.
package lockmgr
