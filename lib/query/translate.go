package query

import (
	"bytes"
	"errors"
)

// --------------------------------------------------------------------------
// Seek Range
// --------------------------------------------------------------------------

// Bound is one end of a seek range in encoded-key space.
type Bound struct {
	Key       []byte
	Inclusive bool
}

// Range is a contiguous interval in encoded-key space. A nil bound means
// unbounded on that side.
type Range struct {
	Lower *Bound
	Upper *Bound
}

// Contains reports whether an encoded key lies inside the range.
func (r Range) Contains(encodedKey []byte) bool {
	if r.Lower != nil {
		c := bytes.Compare(encodedKey, r.Lower.Key)
		if c < 0 || (c == 0 && !r.Lower.Inclusive) {
			return false
		}
	}
	if r.Upper != nil {
		c := bytes.Compare(encodedKey, r.Upper.Key)
		if c > 0 || (c == 0 && !r.Upper.Inclusive) {
			return false
		}
	}
	return true
}

// Empty reports whether no key can lie inside the range.
func (r Range) Empty() bool {
	if r.Lower == nil || r.Upper == nil {
		return false
	}
	c := bytes.Compare(r.Lower.Key, r.Upper.Key)
	if c > 0 {
		return true
	}
	if c == 0 {
		return !r.Lower.Inclusive || !r.Upper.Inclusive
	}
	return false
}

// --------------------------------------------------------------------------
// Translation
// --------------------------------------------------------------------------

// ErrNotTranslatable signals that a predicate cannot be reduced to a single
// contiguous seek range. It is a routing signal for the caller (fall back to
// a full scan plus residual filtering), never a user-visible failure.
var ErrNotTranslatable = errors.New("query: predicate not translatable to a seek range")

// Translate rewrites a predicate into the tightest seek range it can prove.
// The walk tracks the best known lower and upper bound; comparison nodes
// tighten them, opaque Match nodes tighten nothing (they stay residual), and
// Or yields ErrNotTranslatable because a disjunction is not one contiguous
// interval.
//
// The result over-approximates: every key satisfying the predicate lies
// inside the returned range, but not every key in the range satisfies the
// predicate. Callers must apply Predicate.Matches to each scanned key to get
// exact results; imprecision here costs scanned rows, never correctness.
//
// A nil predicate translates to the unbounded range.
func Translate(p *Predicate) (Range, error) {
	var r Range
	if p == nil {
		return r, nil
	}
	if err := translateInto(p, &r); err != nil {
		return Range{}, err
	}
	return r, nil
}

func translateInto(p *Predicate, r *Range) error {
	switch p.kind {
	case kindCmp:
		switch p.op {
		case OpEq:
			r.tightenLower(Bound{Key: p.key, Inclusive: true})
			r.tightenUpper(Bound{Key: p.key, Inclusive: true})
		case OpLt:
			r.tightenUpper(Bound{Key: p.key, Inclusive: false})
		case OpLe:
			r.tightenUpper(Bound{Key: p.key, Inclusive: true})
		case OpGt:
			r.tightenLower(Bound{Key: p.key, Inclusive: false})
		case OpGe:
			r.tightenLower(Bound{Key: p.key, Inclusive: true})
		}
		return nil
	case kindAnd:
		for _, child := range p.children {
			if err := translateInto(child, r); err != nil {
				return err
			}
		}
		return nil
	case kindOr:
		return ErrNotTranslatable
	case kindMatch:
		// opaque; leaves the range as is
		return nil
	default:
		return ErrNotTranslatable
	}
}

// tightenLower raises the lower bound if b is stricter than the current one.
func (r *Range) tightenLower(b Bound) {
	if r.Lower == nil {
		r.Lower = &b
		return
	}
	c := bytes.Compare(b.Key, r.Lower.Key)
	if c > 0 || (c == 0 && !b.Inclusive) {
		r.Lower = &b
	}
}

// tightenUpper lowers the upper bound if b is stricter than the current one.
func (r *Range) tightenUpper(b Bound) {
	if r.Upper == nil {
		r.Upper = &b
		return
	}
	c := bytes.Compare(b.Key, r.Upper.Key)
	if c < 0 || (c == 0 && !b.Inclusive) {
		r.Upper = &b
	}
}
