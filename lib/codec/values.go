package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Binary and String Values
// --------------------------------------------------------------------------

// BinaryValues returns the codec for raw []byte values. Both directions copy,
// so stored values and caller-owned slices never alias.
func BinaryValues() IValueCodec[[]byte] { return binaryValueCodec{} }

type binaryValueCodec struct{}

func (binaryValueCodec) Encode(value []byte) ([]byte, error) {
	return append([]byte(nil), value...), nil
}

func (binaryValueCodec) Decode(b []byte) ([]byte, error) {
	return append([]byte(nil), b...), nil
}

// StringValues returns the codec for string values.
func StringValues() IValueCodec[string] { return stringValueCodec{} }

type stringValueCodec struct{}

func (stringValueCodec) Encode(value string) ([]byte, error) {
	return []byte(value), nil
}

func (stringValueCodec) Decode(b []byte) (string, error) {
	return string(b), nil
}

// --------------------------------------------------------------------------
// Structured Values
// --------------------------------------------------------------------------

// JSONValues returns a codec that stores values of type V as JSON. Suitable
// for values that should stay readable by other tools; note that JSON does
// not distinguish all Go types exactly (e.g. int vs float in interface
// fields).
func JSONValues[V any]() IValueCodec[V] { return jsonValueCodec[V]{} }

type jsonValueCodec[V any] struct{}

func (jsonValueCodec[V]) Encode(value V) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}

func (jsonValueCodec[V]) Decode(b []byte) (V, error) {
	var value V
	if err := json.Unmarshal(b, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return value, nil
}

// GobValues returns a codec that stores values of type V in Go's binary gob
// format. Compact and type-faithful, but only readable from Go.
func GobValues[V any]() IValueCodec[V] { return gobValueCodec[V]{} }

type gobValueCodec[V any] struct{}

func (gobValueCodec[V]) Encode(value V) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

func (gobValueCodec[V]) Decode(b []byte) (V, error) {
	var value V
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return value, nil
}
