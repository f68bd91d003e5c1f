package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// signBit is the most significant bit of a 64-bit word. Flipping it maps the
// two's-complement number line onto the unsigned number line without changing
// relative order.
const signBit = uint64(1) << 63

// --------------------------------------------------------------------------
// Factory
// --------------------------------------------------------------------------

// ForKey returns the built-in order-preserving codec for the key type K, or
// ErrUnsupportedKeyType when no such codec exists. Supported key types:
// int, int64, uint64, float64, string and []byte.
func ForKey[K any]() (IKeyCodec[K], error) {
	var zero K
	switch any(zero).(type) {
	case int:
		return any(IntKeys()).(IKeyCodec[K]), nil
	case int64:
		return any(Int64Keys()).(IKeyCodec[K]), nil
	case uint64:
		return any(Uint64Keys()).(IKeyCodec[K]), nil
	case float64:
		return any(Float64Keys()).(IKeyCodec[K]), nil
	case string:
		return any(StringKeys()).(IKeyCodec[K]), nil
	case []byte:
		return any(BinaryKeys()).(IKeyCodec[K]), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, zero)
	}
}

// --------------------------------------------------------------------------
// Integer Keys
// --------------------------------------------------------------------------

// Int64Keys returns the codec for int64 keys: fixed 8 byte big-endian layout
// with the sign bit flipped, so that unsigned byte-wise comparison of the
// encodings equals signed comparison of the keys.
func Int64Keys() IKeyCodec[int64] { return int64KeyCodec{} }

type int64KeyCodec struct{}

func (int64KeyCodec) Encode(key int64) ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(key)^signBit)
	return b, nil
}

func (int64KeyCodec) Decode(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: int64 key must be 8 bytes, got %d", ErrInvalidEncoding, len(b))
	}
	return int64(binary.BigEndian.Uint64(b) ^ signBit), nil
}

// IntKeys returns the codec for int keys. The encoding is identical to the
// int64 encoding, so int and int64 dictionaries share one on-disk format.
func IntKeys() IKeyCodec[int] { return intKeyCodec{} }

type intKeyCodec struct{}

func (intKeyCodec) Encode(key int) ([]byte, error) {
	return Int64Keys().Encode(int64(key))
}

func (intKeyCodec) Decode(b []byte) (int, error) {
	v, err := Int64Keys().Decode(b)
	return int(v), err
}

// Uint64Keys returns the codec for uint64 keys: fixed 8 byte big-endian
// layout. Big-endian byte order is already order-preserving for unsigned
// integers.
func Uint64Keys() IKeyCodec[uint64] { return uint64KeyCodec{} }

type uint64KeyCodec struct{}

func (uint64KeyCodec) Encode(key uint64) ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, key)
	return b, nil
}

func (uint64KeyCodec) Decode(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: uint64 key must be 8 bytes, got %d", ErrInvalidEncoding, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// --------------------------------------------------------------------------
// Float Keys
// --------------------------------------------------------------------------

// Float64Keys returns the codec for float64 keys: the IEEE-754 bit pattern in
// big-endian order after a sign transform (negative values have all bits
// flipped, non-negative values have the sign bit flipped). This maps the
// float ordering, including -0.0 < ... < +Inf, onto unsigned byte order.
// NaN keys are rejected: NaN has no position in a total order.
func Float64Keys() IKeyCodec[float64] { return float64KeyCodec{} }

type float64KeyCodec struct{}

func (float64KeyCodec) Encode(key float64) ([]byte, error) {
	if math.IsNaN(key) {
		return nil, fmt.Errorf("%w: NaN is not an orderable key", ErrUnsupportedKeyType)
	}
	bits := math.Float64bits(key)
	if bits&signBit != 0 {
		bits = ^bits
	} else {
		bits ^= signBit
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, bits)
	return b, nil
}

func (float64KeyCodec) Decode(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: float64 key must be 8 bytes, got %d", ErrInvalidEncoding, len(b))
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&signBit != 0 {
		bits ^= signBit
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// --------------------------------------------------------------------------
// String and Binary Keys
// --------------------------------------------------------------------------

// StringKeys returns the codec for string keys: the raw bytes of the string.
// Byte-wise comparison of the encodings is exactly Go's ordinal string
// comparison, so the encoding is trivially order-preserving.
func StringKeys() IKeyCodec[string] { return stringKeyCodec{} }

type stringKeyCodec struct{}

func (stringKeyCodec) Encode(key string) ([]byte, error) {
	return []byte(key), nil
}

func (stringKeyCodec) Decode(b []byte) (string, error) {
	return string(b), nil
}

// BinaryKeys returns the codec for []byte keys: an identity mapping. Both
// directions copy, so stored keys and caller-owned slices never alias.
func BinaryKeys() IKeyCodec[[]byte] { return binaryKeyCodec{} }

type binaryKeyCodec struct{}

func (binaryKeyCodec) Encode(key []byte) ([]byte, error) {
	return append([]byte(nil), key...), nil
}

func (binaryKeyCodec) Decode(b []byte) ([]byte, error) {
	return append([]byte(nil), b...), nil
}
