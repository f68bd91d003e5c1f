// Package dict implements the persistent, ordered dictionary facade. It maps
// a typed map-like API (Get/Set/Add/Remove/Each/Filter) onto a transactional
// engine, with keys encoded so that the engine's byte order matches the keys'
// natural order.
//
// The package focuses on:
//   - A generic IDictionary[K, V] interface with explicit error reporting
//     through a coded error type (see RetCode)
//   - One engine transaction per operation, so every operation is atomic and
//     a failed operation leaves nothing behind
//   - Predicate-filtered enumeration that turns recognized key comparisons
//     into index seeks and everything else into scans with residual filtering
//
// Key Components:
//
//   - Dictionary: Created through Open (badger engine, owned) or New (any
//     engine, caller-owned). Keys and values pass through the codecs from
//     "github.com/ValentinKolb/pDict/lib/codec"; key codecs must be
//     order-preserving for range filters to work.
//
//   - Filter: A typed builder chaining Eq/Lt/Le/Gt/Ge/Match constraints.
//     Constraints the translator understands narrow the scanned key range;
//     the full predicate is always re-checked per candidate, so an imprecise
//     range can cost time but never correctness.
//
//   - Read Path: Values are read via the engine's column-value records. The
//     first materialization uses a fixed scratch buffer; a WarnBufferTruncated
//     status triggers one retry with an exactly sized buffer. A small LRU
//     cache (lib/cache) short-circuits repeated point reads and is invalidated
//     on every write before the caller sees the write succeed.
package dict
