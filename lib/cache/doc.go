// Package cache provides the per-dictionary LRU read cache. It maps encoded
// keys to value bytes, is populated opportunistically on point lookups and
// range scans, and is invalidated on every write to the same key. Bounded by
// entry count and byte budget with least-recently-used eviction. Strictly a
// performance layer: disabling it changes round-trip cost, never results.
package cache
