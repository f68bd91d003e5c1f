package dict

import (
	"fmt"

	"github.com/ValentinKolb/pDict/lib/engine"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IDictionary is the generic interface for a persistent, ordered dictionary.
// Keys are totally ordered through their codec; enumeration is always
// ascending in key order. All read operations return the requested data along
// with an error (nil on success), all write operations return only an error.
//
// Every operation is one atomic unit against the underlying engine: a failed
// operation leaves no observable partial mutation. Operations may be invoked
// from any goroutine; each call blocks until the engine work completes.
type IDictionary[K any, V any] interface {
	// Get returns the value stored under key. Fails with ErrKeyNotFound if
	// the key is absent.
	Get(key K) (value V, err error)
	// TryGet returns the value stored under key. The boolean return value
	// indicates whether a value for the key was found; an absent key is not
	// an error.
	TryGet(key K) (value V, loaded bool, err error)
	// Set inserts or updates the value stored under key.
	Set(key K, value V) (err error)
	// Add inserts the value under key. Fails with ErrDuplicateKey if the key
	// already exists; the stored value is left untouched in that case.
	Add(key K, value V) (err error)
	// Remove deletes the entry for key. The boolean return value indicates
	// whether an entry existed; removing an absent key is not an error.
	Remove(key K) (removed bool, err error)
	// Has reports whether an entry for key exists, without reading the value.
	Has(key K) (loaded bool, err error)
	// Count returns the number of entries.
	Count() (count int, err error)
	// Each enumerates all entries in ascending key order. Enumeration is lazy
	// and restartable; it stops early when fn returns false or an error. Each
	// call reads from one engine transaction, so the visibility of writes
	// committed while an enumeration is running is whatever the engine's
	// transaction isolation provides, not something this layer defines.
	Each(fn func(key K, value V) (cont bool, err error)) (err error)
	// Filter starts a predicate-filtered enumeration. Recognized comparisons
	// are answered with an index seek; anything else degrades to a scan with
	// residual filtering, never to a wrong result.
	Filter() *Filter[K, V]
	// GetEngineInfo returns metadata about the engine underlying the dictionary.
	GetEngineInfo() (info engine.EngineInfo, err error)
	// Close releases all sessions and, for dictionaries that own their
	// engine, closes the underlying store.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message
	Cause error   // The underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("DictionaryError (code %s): %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("DictionaryError (code %s): %s", e.Code, e.Msg)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches two dictionary errors by return code, so
// errors.Is(err, ErrDuplicateKey) works regardless of message and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new dictionary error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError creates a new dictionary error wrapping an underlying cause.
func WrapError(code RetCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCDuplicateKey                      // 1: Add on an already existing key.
	RetCKeyNotFound                       // 2: Read/remove of an absent key.
	RetCUnsupportedKeyType                // 3: No order-preserving codec for the key type.
	RetCSerialization                     // 4: Key or value codec failure.
	RetCEngineFailure                     // 5: The storage substrate reported an error.
	RetCClosed                            // 6: Operation on a closed dictionary.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCDuplicateKey:
		return "DuplicateKey"
	case RetCKeyNotFound:
		return "KeyNotFound"
	case RetCUnsupportedKeyType:
		return "UnsupportedKeyType"
	case RetCSerialization:
		return "SerializationError"
	case RetCEngineFailure:
		return "EngineFailure"
	case RetCClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Sentinel errors for use with errors.Is. Matching is by return code.
var (
	ErrDuplicateKey       = NewError(RetCDuplicateKey, "key already exists")
	ErrKeyNotFound        = NewError(RetCKeyNotFound, "key not found")
	ErrUnsupportedKeyType = NewError(RetCUnsupportedKeyType, "unsupported key type")
	ErrSerialization      = NewError(RetCSerialization, "serialization failed")
	ErrEngineFailure      = NewError(RetCEngineFailure, "engine failure")
	ErrClosed             = NewError(RetCClosed, "dictionary is closed")
)
