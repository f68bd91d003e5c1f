// Package mem provides a volatile, in-memory implementation of the engine
// interface. State lives in a B-tree ordered by unsigned byte-wise key
// comparison; write transactions work on a copy-on-write clone of the tree
// and publish it atomically on commit, so a failed transaction is discarded
// without any cleanup. Read transactions operate on an immutable snapshot and
// never block.
//
// The engine backs the conformance test suite and is useful for ephemeral
// dictionaries where durability is not needed.
package mem
