package query

import (
	"bytes"
	"fmt"
)

// --------------------------------------------------------------------------
// Predicate AST
// --------------------------------------------------------------------------

// Op is a comparison operator against an encoded key.
type Op int

const (
	OpEq Op = iota // key == value
	OpLt           // key <  value
	OpLe           // key <= value
	OpGt           // key >  value
	OpGe           // key >= value
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

type nodeKind int

const (
	kindCmp nodeKind = iota
	kindAnd
	kindOr
	kindMatch
)

// Predicate is a filter over encoded keys. Because key encodings are
// order-preserving, comparing encoded keys byte-wise is exactly comparing the
// keys themselves, so a predicate built from encoded values means the same
// thing as the typed predicate it came from.
//
// Predicates are immutable once built and safe for concurrent use (Match
// functions permitting).
type Predicate struct {
	kind     nodeKind
	op       Op
	key      []byte
	children []*Predicate
	fn       func(encodedKey []byte) bool
}

// Eq matches keys equal to the encoded key.
func Eq(encodedKey []byte) *Predicate { return cmp(OpEq, encodedKey) }

// Lt matches keys strictly below the encoded key.
func Lt(encodedKey []byte) *Predicate { return cmp(OpLt, encodedKey) }

// Le matches keys at or below the encoded key.
func Le(encodedKey []byte) *Predicate { return cmp(OpLe, encodedKey) }

// Gt matches keys strictly above the encoded key.
func Gt(encodedKey []byte) *Predicate { return cmp(OpGt, encodedKey) }

// Ge matches keys at or above the encoded key.
func Ge(encodedKey []byte) *Predicate { return cmp(OpGe, encodedKey) }

func cmp(op Op, encodedKey []byte) *Predicate {
	return &Predicate{kind: kindCmp, op: op, key: append([]byte(nil), encodedKey...)}
}

// And matches keys satisfying every child predicate.
func And(ps ...*Predicate) *Predicate {
	return &Predicate{kind: kindAnd, children: ps}
}

// Or matches keys satisfying at least one child predicate. Or is not
// reducible to a single contiguous seek range; queries containing it fall
// back to a full scan.
func Or(ps ...*Predicate) *Predicate {
	return &Predicate{kind: kindOr, children: ps}
}

// Match wraps an opaque filter function. The translator cannot see inside
// it, so it never narrows the seek range; it is applied as a residual filter
// after the scan.
func Match(fn func(encodedKey []byte) bool) *Predicate {
	return &Predicate{kind: kindMatch, fn: fn}
}

// Matches evaluates the predicate exactly against an encoded key. A nil
// predicate matches everything.
func (p *Predicate) Matches(encodedKey []byte) bool {
	if p == nil {
		return true
	}
	switch p.kind {
	case kindCmp:
		c := bytes.Compare(encodedKey, p.key)
		switch p.op {
		case OpEq:
			return c == 0
		case OpLt:
			return c < 0
		case OpLe:
			return c <= 0
		case OpGt:
			return c > 0
		case OpGe:
			return c >= 0
		}
		return false
	case kindAnd:
		for _, child := range p.children {
			if !child.Matches(encodedKey) {
				return false
			}
		}
		return true
	case kindOr:
		for _, child := range p.children {
			if child.Matches(encodedKey) {
				return true
			}
		}
		return false
	case kindMatch:
		return p.fn(encodedKey)
	default:
		return false
	}
}
