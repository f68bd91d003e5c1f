package dict

import (
	"github.com/ValentinKolb/pDict/lib/query"
)

// Filter accumulates typed key constraints for a filtered enumeration. All
// constraints are combined conjunctively. The zero constraint set enumerates
// everything; a key that fails to encode poisons the filter and surfaces as
// the error of the terminal call.
//
// A Filter is built and consumed by one goroutine; the enumeration it starts
// follows the same transaction rules as Each.
type Filter[K any, V any] struct {
	d     *dictionary[K, V]
	preds []*query.Predicate
	err   error
}

func (d *dictionary[K, V]) Filter() *Filter[K, V] {
	return &Filter[K, V]{d: d}
}

// Eq restricts the enumeration to exactly the given key.
func (f *Filter[K, V]) Eq(key K) *Filter[K, V] { return f.cmp(query.Eq, key) }

// Lt restricts the enumeration to keys ordered strictly before the given key.
func (f *Filter[K, V]) Lt(key K) *Filter[K, V] { return f.cmp(query.Lt, key) }

// Le restricts the enumeration to keys ordered before or equal to the given key.
func (f *Filter[K, V]) Le(key K) *Filter[K, V] { return f.cmp(query.Le, key) }

// Gt restricts the enumeration to keys ordered strictly after the given key.
func (f *Filter[K, V]) Gt(key K) *Filter[K, V] { return f.cmp(query.Gt, key) }

// Ge restricts the enumeration to keys ordered after or equal to the given key.
func (f *Filter[K, V]) Ge(key K) *Filter[K, V] { return f.cmp(query.Ge, key) }

func (f *Filter[K, V]) cmp(build func([]byte) *query.Predicate, key K) *Filter[K, V] {
	if f.err != nil {
		return f
	}
	enc, err := f.d.keys.Encode(key)
	if err != nil {
		f.err = wrapCodecErr("cannot encode filter key", err)
		return f
	}
	f.preds = append(f.preds, build(enc))
	return f
}

// Match adds an opaque key predicate. It never narrows the scanned range;
// it is applied as a residual filter to every candidate.
func (f *Filter[K, V]) Match(fn func(key K) bool) *Filter[K, V] {
	if f.err != nil {
		return f
	}
	f.preds = append(f.preds, query.Match(func(enc []byte) bool {
		key, err := f.d.keys.Decode(enc)
		if err != nil {
			return false
		}
		return fn(key)
	}))
	return f
}

func (f *Filter[K, V]) predicate() *query.Predicate {
	switch len(f.preds) {
	case 0:
		return nil
	case 1:
		return f.preds[0]
	default:
		return query.And(f.preds...)
	}
}

// Each enumerates all matching entries in ascending key order, stopping early
// when fn returns false or an error.
func (f *Filter[K, V]) Each(fn func(key K, value V) (cont bool, err error)) error {
	if f.err != nil {
		return f.err
	}
	return f.d.find(f.predicate(), fn)
}

// Count returns the number of matching entries.
func (f *Filter[K, V]) Count() (int, error) {
	count := 0
	err := f.Each(func(K, V) (bool, error) {
		count++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Keys returns the matching keys in ascending order.
func (f *Filter[K, V]) Keys() ([]K, error) {
	var keys []K
	err := f.Each(func(key K, _ V) (bool, error) {
		keys = append(keys, key)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
