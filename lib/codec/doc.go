// Package codec converts typed keys and values to and from the engine's
// binary column format.
//
// Key codecs carry the central invariant of the whole module: the byte-wise
// order of encoded keys equals the natural order of the keys themselves.
// Numeric keys use fixed-width big-endian layouts with a sign transform
// (flipped sign bit for integers, full bit-flip for negative floats), string
// and binary keys are stored as their raw bytes. Because of this invariant
// the engine's physical index order is the logical key order, which is what
// allows the query layer to answer range predicates with index seeks.
//
// Value codecs have no ordering requirement and only promise exact
// round-trips. Binary, string, JSON and gob codecs are provided, plus a
// zstd-compressing wrapper for large payloads.
package codec
