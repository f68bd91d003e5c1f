package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// --------------------------------------------------------------------------
// Compressing Value Codec
// --------------------------------------------------------------------------

// CompressedValues wraps an inner value codec with zstd compression. Useful
// for large payloads that would otherwise land in the engine's overflow
// storage; the compression is invisible to callers, the round-trip contract
// of the inner codec is preserved unchanged.
func CompressedValues[V any](inner IValueCodec[V]) (IValueCodec[V], error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &compressedValueCodec[V]{inner: inner, enc: enc, dec: dec}, nil
}

type compressedValueCodec[V any] struct {
	inner IValueCodec[V]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// Thread-safety: zstd's EncodeAll/DecodeAll on shared Encoder/Decoder
// instances are safe for concurrent use.

func (c *compressedValueCodec[V]) Encode(value V) ([]byte, error) {
	plain, err := c.inner.Encode(value)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(plain, make([]byte, 0, len(plain)/2)), nil
}

func (c *compressedValueCodec[V]) Decode(b []byte) (V, error) {
	plain, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return c.inner.Decode(plain)
}
