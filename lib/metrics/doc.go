// Package metrics defines the event-emission boundary of the tKV engine
// and a set of sink implementations.
//
// The engine's contract is minimal: every dispatched operation emits one
// "operation completed" event (operation name, outcome, elapsed time) and
// the store emits shard-level occupancy counters on demand. Emission is
// fire-and-forget: a sink must never block or fail an operation.
//
// Key Components:
//
//   - Sink: the capability interface consumed by the engine. The absence
//     of a sink is modeled by NewNoopSink, a zero-cost no-op path, so the
//     engine's logic never branches on "metrics enabled".
//
//   - VictoriaSink: records events into the process-global
//     VictoriaMetrics registry (counters per op/outcome, duration
//     histograms), ready to be exposed by an embedding server.
//
//   - RegistrySink: records events into a go-metrics (rcrowley) registry
//     with timers per operation, for embedders already standardized on
//     that library.
//
//   - AsyncSink: decouples the hot path from a potentially slow inner
//     sink through a lock-free multi-producer single-consumer queue; the
//     producing side is wait-free in the common case and events are
//     applied by a single background goroutine.
package metrics
