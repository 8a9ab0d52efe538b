// Package value implements the typed value model of the tKV engine.
//
// Every key in the engine stores exactly one Value. A Value is a tagged
// union over a closed set of variants (Kind): Bytes, Boolean, Float,
// Integer, String, List, Map and Set. The variant of a key is chosen on
// first write and stays fixed until the key is deleted; operations that
// require a different variant fail with a type-mismatch error instead of
// coercing.
//
// The package focuses on:
//   - A compact struct-backed union with explicit runtime kind checks
//   - Mutable access to the inner representation for in-place updates
//     (only safe while the caller holds the store's per-key exclusion)
//   - Deep Clone and Equal for snapshotting and compare-and-set
//
// Key Components:
//
//   - Kind: The variant tag. Kind values are wire-stable byte identifiers
//     so that a protocol layer can transmit them unchanged.
//
//   - Value: The union itself. Constructors (NewBytes, NewInteger, ...)
//     create a Value of a given variant; ZeroOf creates the variant's
//     default (empty bytes, zero integer, empty list, ...).
//
//   - Accessors: For each variant there is a mutable accessor (BytesRef,
//     IntegerRef, ...) returning the inner representation plus an ok flag.
//     A false flag means the Value holds a different variant.
//
// Thread-safety: Value is NOT safe for concurrent use. The store
// guarantees per-key exclusive access; all mutation must happen inside
// that scope. Readers outside the scope must work on a Clone.
package value
