// Package engine implements the feature dispatcher of tKV: the single
// entry point translating an operation request (name, key, arguments)
// into a type-checked mutation or read against the sharded store,
// producing a uniform result or error shape.
//
// The package focuses on:
//   - A closed table of named operations ("features"), each declaring
//     its argument arity and the value variants it applies to
//   - Explicit runtime type checks at every operation entry: an
//     operation on a key holding a different variant fails with
//     TypeMismatch instead of coercing
//   - Wiring the store, the notification registry, and the metrics sink
//     together while keeping each behind its own interface
//
// Dispatch flow: the operation is resolved by name and its argument
// shape validated. The operation's closure then runs under the store's
// per-key exclusion: it checks the entry's variant, applies the pure
// transformation, and hands back the new value and the caller's payload.
// After the exclusion is released, and only if the stored state changed,
// the dispatcher notifies the registry for that key with a fresh
// snapshot so that pending waiters are re-evaluated. Blocking waits
// bypass the store entirely and suspend in the registry.
//
// Every dispatched operation emits exactly one operation-completed event
// to the injected metrics sink; emission is fire-and-forget and never
// fails the operation.
//
// Thread-safety: all IEngine methods are safe for concurrent use.
// Operations on the same key are linearized by the store; operations on
// different keys proceed in parallel.
package engine
