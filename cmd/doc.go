// Package cmd implements the command-line interface for the tkv storage
// engine. It provides a hierarchical command structure for exploring and
// benchmarking the engine.
//
// The package is organized into several subpackages:
//
//   - shell: An interactive read-eval-print loop over the engine's operations
//   - bench: An in-process benchmark driver for the engine
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tkv -help for a list of all commands.
package cmd
