package engine

import (
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IEngine is the generic interface for a transactional, ordered key-value
// storage substrate. Keys are opaque byte strings and are stored in an index
// ordered by unsigned byte-wise comparison. Higher layers are responsible for
// producing key encodings whose byte order matches their logical order.
//
// Implementations must allow concurrent transactions from multiple goroutines;
// the consistency guarantees across concurrent transactions are those of the
// specific implementation.
type IEngine interface {
	// View executes fn inside a read-only transaction. Any error returned by
	// fn is propagated unchanged. The transaction (and every cursor opened
	// from it) is released when View returns.
	View(fn func(txn ITxn) error) error

	// Update executes fn inside a read-write transaction. If fn returns an
	// error the transaction is rolled back before the error is propagated;
	// otherwise it is committed. No partial effects of a rolled-back
	// transaction are ever observable.
	Update(fn func(txn ITxn) error) error

	// GetInfo returns metadata about the engine.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetInfo() (info EngineInfo, err error)

	// Close releases all resources held by the engine. After Close, all
	// operations fail with ErrClosed.
	Close() (err error)
}

// ITxn is a single transaction against the engine. A transaction is owned
// exclusively by the operation that opened it and must never be shared across
// goroutines or retained past the enclosing View/Update call.
type ITxn interface {
	// Set inserts or updates the record for key. Values larger than the
	// engine's inline capacity are stored through its overflow path; this is
	// transparent to the caller.
	Set(key, value []byte) (err error)

	// Delete removes the record for key. Deleting an absent key is not an error.
	Delete(key []byte) (err error)

	// Has reports whether a record for key exists. It never materializes the value.
	Has(key []byte) (loaded bool, err error)

	// RetrieveColumn reads the value occurrence with the given 1-based tag and
	// returns the engine's raw fixed-layout column-value record (see
	// ParseColumnValue for the layout). The value itself is NOT fetched or
	// copied; the record carries an opaque handle to it instead.
	//
	// If no record for key exists, ErrKeyNotFound is returned. If tag lies
	// beyond the last occurrence, a record with status WarnNoMoreValues (and
	// no handle) is returned together with a nil error.
	RetrieveColumn(key []byte, tag uint32) (raw []byte, err error)

	// Materialize copies the value behind a handle into buf and returns the
	// number of bytes copied. If buf is shorter than the value, the copy is
	// partial and the status is WarnBufferTruncated; this is a warning, not an
	// error. Handles are only valid within the transaction that issued them.
	Materialize(h Handle, buf []byte) (n int, status Status, err error)

	// NewCursor opens a cursor over the ordered index. The cursor is owned by
	// this transaction and must be closed before the transaction ends.
	NewCursor() ICursor
}

// ICursor iterates the ordered index in ascending encoded-key order.
type ICursor interface {
	// Rewind positions the cursor at the first record.
	Rewind()
	// Seek positions the cursor at the first record whose key is >= the given
	// encoded key.
	Seek(key []byte)
	// Valid reports whether the cursor points at a record.
	Valid() (ok bool)
	// Next advances the cursor to the next record in key order.
	Next()
	// Key returns the encoded key of the current record. The returned slice is
	// only valid until the next cursor movement.
	Key() (key []byte)
	// Column returns the raw fixed-layout column-value record (first
	// occurrence) for the current record, without fetching the value.
	Column() (raw []byte)
	// Close releases the cursor.
	Close()
}

// Handle is an opaque token referencing a not-yet-materialized value inside a
// transaction. It is never a memory address; it is resolved exclusively
// through ITxn.Materialize.
type Handle uint64

// --------------------------------------------------------------------------
// Engine Metadata
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplBadger Implementation = "badger"
	ImplMemory Implementation = "memory"
)

type EngineInfo struct {
	SizeBytes  int64          `json:"size_bytes"`
	EngineType Implementation `json:"engine_type"`
	Path       string         `json:"path,omitempty"`
	Metadata   interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrKeyNotFound is returned by read operations when no record for the
	// requested key exists.
	ErrKeyNotFound = errors.New("engine: key not found")
	// ErrClosed is returned by all operations after the engine has been closed.
	ErrClosed = errors.New("engine: closed")
	// ErrTxnReadOnly is returned when a write is attempted inside View.
	ErrTxnReadOnly = errors.New("engine: read-only transaction")
	// ErrInvalidHandle is returned by Materialize for a handle that was not
	// issued by this transaction.
	ErrInvalidHandle = errors.New("engine: invalid value handle")
)
