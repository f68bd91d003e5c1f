// Package testing provides a reusable conformance test suite and benchmark
// suite for implementations of the engine interface. Every engine backend is
// expected to pass RunEngineTests unchanged; the suite pins down the parts of
// the contract that the dictionary layer depends on: byte-wise key ordering,
// seek semantics, truncation and no-more-values warnings, deferred value
// materialization, rollback atomicity and transaction scoping.
package testing
