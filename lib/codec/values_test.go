package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type testDocument struct {
	ID     int64
	Name   string
	Tags   []string
	Nested struct {
		Score float64
	}
}

func TestBinaryValuesRoundTrip(t *testing.T) {
	c := BinaryValues()

	original := []byte("some payload")
	enc, err := c.Encode(original)
	if err != nil {
		t.Fatal(err)
	}

	// mutating the original must not affect the encoding
	original[0] = 'X'

	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, []byte("some payload")) {
		t.Errorf("expected 'some payload', got %q", dec)
	}
}

func TestStringValuesRoundTrip(t *testing.T) {
	c := StringValues()
	for _, v := range []string{"", "value", "\x00binary\xff", strings.Repeat("x", 1<<16)} {
		enc, err := c.Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		dec, err := c.Decode(enc)
		if err != nil {
			t.Fatal(err)
		}
		if dec != v {
			t.Errorf("round trip failed for %d byte string", len(v))
		}
	}
}

func TestJSONValuesRoundTrip(t *testing.T) {
	c := JSONValues[testDocument]()

	doc := testDocument{ID: 42, Name: "doc", Tags: []string{"a", "b"}}
	doc.Nested.Score = 0.5

	enc, err := c.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec.ID != doc.ID || dec.Name != doc.Name || len(dec.Tags) != 2 || dec.Nested.Score != 0.5 {
		t.Errorf("round trip failed: got %+v", dec)
	}
}

func TestJSONValuesSerializationError(t *testing.T) {
	c := JSONValues[chan int]()

	if _, err := c.Encode(make(chan int)); !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization for channel value, got %v", err)
	}
	if _, err := c.Decode([]byte("{not json")); !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization for malformed input, got %v", err)
	}
}

func TestGobValuesRoundTrip(t *testing.T) {
	c := GobValues[testDocument]()

	doc := testDocument{ID: -7, Name: "gob", Tags: []string{"x"}}
	enc, err := c.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec.ID != doc.ID || dec.Name != doc.Name || len(dec.Tags) != 1 {
		t.Errorf("round trip failed: got %+v", dec)
	}
}

func TestCompressedValuesRoundTrip(t *testing.T) {
	inner := StringValues()
	c, err := CompressedValues(inner)
	if err != nil {
		t.Fatal(err)
	}

	// highly compressible payload, well past inline column sizes
	v := strings.Repeat("abcdefgh", 1<<17)

	enc, err := c.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) >= len(v) {
		t.Errorf("expected compression to shrink %d bytes, got %d", len(v), len(enc))
	}

	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec != v {
		t.Error("compressed round trip failed")
	}
}

func TestCompressedValuesRejectsGarbage(t *testing.T) {
	c, err := CompressedValues(StringValues())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode([]byte("definitely not zstd")); !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
}
