// Package testing provides a standardised test and benchmark suite for
// implementations of the engine.IEngine interface.
//
// The package contains:
//   - testing: A conformance suite covering the operation contracts (typed
//     values, per-key atomicity, TTL, blocking waits, error codes)
//   - benchmark: Throughput tests for the common operation mix
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() engine.IEngine {
//		return engine.New(nil)
//	}
//
//	// Running the standard test suite
//	enginetesting.RunEngineTests(t, "Engine", factory)
//
//	// Running performance benchmarks
//	enginetesting.RunEngineBenchmarks(b, "Engine", factory)
package testing
