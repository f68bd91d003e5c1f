package codec

import (
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IKeyCodec is the bijective mapping between a typed key and its binary
// representation. Implementations must preserve the key type's total order:
// for any two keys k1 < k2, Encode(k1) must sort before Encode(k2) under
// unsigned byte-wise comparison. This invariant is what lets the dictionary
// turn range predicates into index seeks instead of full scans.
//
// Implementations must be pure (no side effects) and safe for concurrent use.
type IKeyCodec[K any] interface {
	// Encode converts a key to its order-preserving binary form.
	Encode(key K) (b []byte, err error)
	// Decode is the exact inverse of Encode. It fails with ErrInvalidEncoding
	// for byte strings that no key encodes to.
	Decode(b []byte) (key K, err error)
}

// IValueCodec is the mapping between a typed value and its binary
// representation. There is no ordering requirement; the only contract is
// round-trip transparency: Decode(Encode(v)) == v for every serializable v,
// regardless of how large the encoding is (the storage layer handles overflow
// transparently).
//
// Implementations must be safe for concurrent use.
type IValueCodec[V any] interface {
	// Encode converts a value to bytes. Fails with ErrSerialization (wrapped)
	// for non-serializable content.
	Encode(value V) (b []byte, err error)
	// Decode reconstructs the exact original value.
	Decode(b []byte) (value V, err error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrUnsupportedKeyType is returned when no order-preserving encoding
	// exists for the requested key type.
	ErrUnsupportedKeyType = errors.New("codec: unsupported key type")
	// ErrInvalidEncoding is returned by Decode for byte strings that are not
	// a valid encoding of any key.
	ErrInvalidEncoding = errors.New("codec: invalid encoding")
	// ErrSerialization is returned (wrapped) when a value cannot be encoded
	// or decoded.
	ErrSerialization = errors.New("codec: serialization failed")
)
