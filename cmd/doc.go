// Package cmd implements the command-line interface for the pDict persistent
// dictionary. It provides commands for reading, writing and scanning a store
// on disk, plus a benchmark tool.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for dictionary operations (get, set, scan, etc.) and the
//     perf benchmark
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Configuration is read from flags and from PDICT_* environment variables
// (optionally via .env files). See pdict -help for a list of all commands.
package cmd
