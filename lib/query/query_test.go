package query

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

// enc mirrors the uint64 big-endian key encoding: numeric order equals byte
// order, which is the precondition for everything in this package.
func enc(k uint64) []byte {
	return []byte{
		byte(k >> 56), byte(k >> 48), byte(k >> 40), byte(k >> 32),
		byte(k >> 24), byte(k >> 16), byte(k >> 8), byte(k),
	}
}

func TestTranslateHalfOpenInterval(t *testing.T) {
	// 5 <= key < 15
	p := And(Ge(enc(5)), Lt(enc(15)))

	r, err := Translate(p)
	if err != nil {
		t.Fatal(err)
	}

	if r.Lower == nil || !r.Lower.Inclusive || string(r.Lower.Key) != string(enc(5)) {
		t.Errorf("expected inclusive lower bound 5, got %+v", r.Lower)
	}
	if r.Upper == nil || r.Upper.Inclusive || string(r.Upper.Key) != string(enc(15)) {
		t.Errorf("expected exclusive upper bound 15, got %+v", r.Upper)
	}

	for k := uint64(0); k < 25; k++ {
		want := k >= 5 && k < 15
		if got := r.Contains(enc(k)); got != want {
			t.Errorf("Contains(%d) = %v, want %v", k, got, want)
		}
		if got := p.Matches(enc(k)); got != want {
			t.Errorf("Matches(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestTranslateEquality(t *testing.T) {
	r, err := Translate(Eq(enc(7)))
	if err != nil {
		t.Fatal(err)
	}

	if !r.Contains(enc(7)) {
		t.Error("equality range must contain the key itself")
	}
	if r.Contains(enc(6)) || r.Contains(enc(8)) {
		t.Error("equality range must contain nothing else")
	}
}

func TestTranslateTightensConflictingBounds(t *testing.T) {
	// key >= 3 AND key >= 8 AND key < 20 AND key <= 12
	p := And(Ge(enc(3)), Ge(enc(8)), Lt(enc(20)), Le(enc(12)))

	r, err := Translate(p)
	if err != nil {
		t.Fatal(err)
	}

	if string(r.Lower.Key) != string(enc(8)) || !r.Lower.Inclusive {
		t.Errorf("expected lower bound 8 inclusive, got %+v", r.Lower)
	}
	if string(r.Upper.Key) != string(enc(12)) || !r.Upper.Inclusive {
		t.Errorf("expected upper bound 12 inclusive, got %+v", r.Upper)
	}
}

func TestTranslateEmptyRange(t *testing.T) {
	// key > 10 AND key < 10
	r, err := Translate(And(Gt(enc(10)), Lt(enc(10))))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Empty() {
		t.Error("contradictory bounds must produce an empty range")
	}

	// key == 5 AND key == 9
	r, err = Translate(And(Eq(enc(5)), Eq(enc(9))))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Empty() {
		t.Error("conflicting equalities must produce an empty range")
	}
}

func TestTranslateUnbounded(t *testing.T) {
	r, err := Translate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Lower != nil || r.Upper != nil {
		t.Errorf("nil predicate must translate to the unbounded range, got %+v", r)
	}
	if !r.Contains(enc(0)) || !r.Contains(enc(1<<60)) {
		t.Error("unbounded range must contain everything")
	}
}

// Opaque predicates widen the range instead of failing.
func TestTranslateMatchStaysResidual(t *testing.T) {
	even := Match(func(encodedKey []byte) bool {
		return encodedKey[7]%2 == 0
	})

	r, err := Translate(And(Ge(enc(10)), even, Lt(enc(20))))
	if err != nil {
		t.Fatal(err)
	}

	// range only reflects the recognized comparisons
	if string(r.Lower.Key) != string(enc(10)) || string(r.Upper.Key) != string(enc(20)) {
		t.Errorf("opaque filter must not affect the bounds, got %+v", r)
	}

	// the residual filter still applies exactly
	p := And(Ge(enc(10)), even, Lt(enc(20)))
	if p.Matches(enc(11)) {
		t.Error("11 is odd and must not match")
	}
	if !p.Matches(enc(12)) {
		t.Error("12 must match")
	}
}

func TestTranslateOrNotTranslatable(t *testing.T) {
	p := Or(Eq(enc(1)), Eq(enc(5)))

	if _, err := Translate(p); !errors.Is(err, ErrNotTranslatable) {
		t.Fatalf("expected ErrNotTranslatable for disjunction, got %v", err)
	}

	// exact evaluation still works for the full-scan fallback
	if !p.Matches(enc(1)) || !p.Matches(enc(5)) || p.Matches(enc(3)) {
		t.Error("disjunction evaluation broken")
	}

	// nested Or inside And is just as untranslatable
	if _, err := Translate(And(Ge(enc(0)), p)); !errors.Is(err, ErrNotTranslatable) {
		t.Errorf("expected ErrNotTranslatable for nested disjunction, got %v", err)
	}
}

// Soundness: every key matching the predicate lies inside the translated
// range, for randomly generated conjunctions.
func TestTranslateSoundnessRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	for trial := 0; trial < 500; trial++ {
		var children []*Predicate
		for n := rng.Intn(4) + 1; n > 0; n-- {
			v := uint64(rng.Intn(100))
			switch rng.Intn(5) {
			case 0:
				children = append(children, Eq(enc(v)))
			case 1:
				children = append(children, Lt(enc(v)))
			case 2:
				children = append(children, Le(enc(v)))
			case 3:
				children = append(children, Gt(enc(v)))
			case 4:
				children = append(children, Ge(enc(v)))
			}
		}
		p := And(children...)

		r, err := Translate(p)
		if err != nil {
			t.Fatal(err)
		}

		for k := uint64(0); k < 100; k++ {
			if p.Matches(enc(k)) && !r.Contains(enc(k)) {
				t.Fatalf("trial %d: key %d matches %s but lies outside the range", trial, k, describe(children))
			}
		}
	}
}

func describe(ps []*Predicate) string {
	s := ""
	for _, p := range ps {
		s += fmt.Sprintf("(%s %x)", p.op, p.key)
	}
	return s
}
