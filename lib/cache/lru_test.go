package cache

import (
	"bytes"
	"fmt"
	"testing"
)

func TestGetPut(t *testing.T) {
	c := New(&Options{Name: "test-getput"})

	if _, ok := c.Get([]byte("k")); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put([]byte("k"), []byte("v1"))
	if v, ok := c.Get([]byte("k")); !ok || !bytes.Equal(v, []byte("v1")) {
		t.Errorf("expected hit with v1, got ok=%v v=%s", ok, v)
	}

	// overwrite
	c.Put([]byte("k"), []byte("v2"))
	if v, ok := c.Get([]byte("k")); !ok || !bytes.Equal(v, []byte("v2")) {
		t.Errorf("expected hit with v2, got ok=%v v=%s", ok, v)
	}
	if c.Len() != 1 {
		t.Errorf("expected single entry, got %d", c.Len())
	}
}

func TestInvalidate(t *testing.T) {
	c := New(&Options{Name: "test-invalidate"})

	c.Put([]byte("k"), []byte("stale"))
	c.Invalidate([]byte("k"))

	if _, ok := c.Get([]byte("k")); ok {
		t.Error("invalidated entry must not be served")
	}

	// invalidating an absent key drops no entry but advances the generation
	gen := c.Generation()
	c.Invalidate([]byte("absent"))
	if c.Generation() == gen {
		t.Error("invalidation must advance the generation")
	}
}

func TestPutAtDropsFillAfterInvalidation(t *testing.T) {
	c := New(&Options{Name: "test-putat"})

	// a fill observed before the invalidation must not land
	gen := c.Generation()
	c.Invalidate([]byte("k"))
	c.PutAt([]byte("k"), []byte("stale"), gen)
	if _, ok := c.Get([]byte("k")); ok {
		t.Error("fill older than an invalidation must be dropped")
	}

	// a fill observed after the invalidation lands normally
	gen = c.Generation()
	c.PutAt([]byte("k"), []byte("fresh"), gen)
	if v, ok := c.Get([]byte("k")); !ok || !bytes.Equal(v, []byte("fresh")) {
		t.Errorf("expected hit with fresh, got ok=%v v=%s", ok, v)
	}

	// Purge advances the generation as well
	gen = c.Generation()
	c.Purge()
	c.PutAt([]byte("k"), []byte("stale"), gen)
	if _, ok := c.Get([]byte("k")); ok {
		t.Error("fill older than a purge must be dropped")
	}
}

func TestCountEviction(t *testing.T) {
	c := New(&Options{Name: "test-count", MaxEntries: 3, MaxBytes: -1})

	for i := 0; i < 4; i++ {
		c.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v"))
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", c.Len())
	}
	// k0 is the least recently used entry
	if _, ok := c.Get([]byte("k0")); ok {
		t.Error("expected k0 to be evicted first")
	}
	if _, ok := c.Get([]byte("k3")); !ok {
		t.Error("expected k3 to survive")
	}
}

func TestLRUOrder(t *testing.T) {
	c := New(&Options{Name: "test-order", MaxEntries: 2, MaxBytes: -1})

	c.Put([]byte("a"), []byte("v"))
	c.Put([]byte("b"), []byte("v"))

	// touch a, so b becomes the eviction candidate
	c.Get([]byte("a"))
	c.Put([]byte("c"), []byte("v"))

	if _, ok := c.Get([]byte("a")); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get([]byte("b")); ok {
		t.Error("least recently used entry survived")
	}
}

func TestByteBudgetEviction(t *testing.T) {
	c := New(&Options{Name: "test-bytes", MaxEntries: -1, MaxBytes: 10})

	c.Put([]byte("a"), []byte("12345"))
	c.Put([]byte("b"), []byte("12345"))
	if c.SizeBytes() != 10 || c.Len() != 2 {
		t.Fatalf("expected 2 entries / 10 bytes, got %d / %d", c.Len(), c.SizeBytes())
	}

	c.Put([]byte("c"), []byte("123"))
	if c.SizeBytes() > 10 {
		t.Errorf("byte budget exceeded: %d", c.SizeBytes())
	}
	if _, ok := c.Get([]byte("a")); ok {
		t.Error("expected oldest entry to be evicted for the byte budget")
	}
}

func TestOversizedValueNotCached(t *testing.T) {
	c := New(&Options{Name: "test-oversized", MaxBytes: 4})

	c.Put([]byte("k"), []byte("too large"))
	if c.Len() != 0 {
		t.Error("value above the byte budget must not be cached")
	}
}

func TestDisabled(t *testing.T) {
	c := New(&Options{Name: "test-disabled", Disabled: true})

	c.Put([]byte("k"), []byte("v"))
	if _, ok := c.Get([]byte("k")); ok {
		t.Error("disabled cache must never hit")
	}
	if c.Len() != 0 {
		t.Error("disabled cache must stay empty")
	}
}

func TestPurge(t *testing.T) {
	c := New(&Options{Name: "test-purge"})

	c.Put([]byte("a"), []byte("v"))
	c.Put([]byte("b"), []byte("v"))
	c.Purge()

	if c.Len() != 0 || c.SizeBytes() != 0 {
		t.Errorf("expected empty cache after purge, got %d entries / %d bytes", c.Len(), c.SizeBytes())
	}
}
