// Package query turns declarative key predicates into index seek ranges.
//
// A Predicate is a small AST of comparisons against encoded keys, combined
// with And/Or and opaque Match filters. Translate reduces a predicate to the
// tightest contiguous [lower, upper] interval it can prove in encoded-key
// space; the dictionary layer seeks to the lower bound, scans to the upper
// bound and applies Predicate.Matches to each visited key as the residual
// filter. Predicates the translator cannot see through widen the range
// instead of failing, so translation is always sound (no false negatives)
// and at worst less precise. Only disjunctions are reported as not
// translatable, which routes the caller to a full scan.
package query
