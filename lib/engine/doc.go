// Package engine defines the contract between the dictionary layer and the
// transactional, ordered key-value substrate it is built on. The package
// contains no storage logic itself: it specifies the interfaces an engine has
// to implement and the fixed binary layout of the column-value records an
// engine returns for reads.
//
// The package focuses on:
//   - A unified interface (IEngine / ITxn / ICursor) for transactional access
//     to an index ordered by unsigned byte-wise key comparison
//   - The native column-value record format and its explicit, field-by-field
//     decoder (ParseColumnValue), including the warning/error status taxonomy
//   - Opaque value handles, which defer the cost of fetching a value until a
//     caller actually asks for it via ITxn.Materialize
//
// Key Components:
//
//   - IEngine Interface: Transaction scoping (View for reads, Update for
//     atomic writes with rollback on failure), engine metadata and shutdown.
//     All implementations share this common interface, allowing the dictionary
//     layer to switch between storage backends without code changes.
//
//   - ColumnValue: The decoded form of the 20-byte record describing a stored
//     value (length, status, occurrence tag, handle). Warnings such as
//     WarnBufferTruncated are reported alongside successful reads rather than
//     as hard failures, so callers can recover (e.g. by retrying with a larger
//     buffer) instead of aborting.
//
// Implementations:
//
//	Two implementations of the IEngine interface ship with this module:
//
//	- Badger Engine: A persistent implementation on top of dgraph-io/badger,
//	  suitable for durable on-disk dictionaries. Available in the
//	  "github.com/ValentinKolb/pDict/lib/engine/badger" package.
//
//	- Memory Engine: An in-memory implementation with copy-on-write snapshot
//	  transactions, suitable for tests and ephemeral dictionaries. Available
//	  in the "github.com/ValentinKolb/pDict/lib/engine/mem" package.
package engine
