package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultMaxEntries bounds the cache by entry count when no explicit
	// limit is configured.
	DefaultMaxEntries = 16 * 1024
	// DefaultMaxBytes bounds the cache by payload size when no explicit
	// limit is configured.
	DefaultMaxBytes = 64 * 1024 * 1024
)

// --------------------------------------------------------------------------
// Core Cache Structure
// --------------------------------------------------------------------------

// Cache is a bounded LRU over encoded key -> value bytes. It exists purely to
// save engine round-trips for repeated point lookups; with a zero capacity it
// degrades to a no-op and observable dictionary behavior is unchanged.
//
// The cache is private to one dictionary instance and is never shared.
type Cache struct {
	mu        sync.Mutex
	maxCount  int
	maxBytes  int64
	sizeBytes int64
	gen       uint64
	items     map[string]*list.Element
	evictList *list.List

	hits      *metrics.Counter
	misses    *metrics.Counter
	evictions *metrics.Counter
}

type entry struct {
	key   string
	value []byte
}

// Options configures the cache during initialization.
type Options struct {
	// Name distinguishes this cache's metrics; empty means "default".
	Name string
	// MaxEntries bounds the number of cached pairs (0 = default, negative = unbounded).
	MaxEntries int
	// MaxBytes bounds the total payload size (0 = default, negative = unbounded).
	MaxBytes int64
	// Disabled turns the cache into a no-op.
	Disabled bool
}

// New creates a new cache with the specified options (optional).
//
// Thread-safety: the returned cache is safe for concurrent use.
func New(opts *Options) *Cache {
	if opts == nil {
		opts = &Options{}
	}

	maxCount := opts.MaxEntries
	if maxCount == 0 {
		maxCount = DefaultMaxEntries
	}
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	if opts.Disabled {
		maxCount = 0
		maxBytes = 0
	}

	name := opts.Name
	if name == "" {
		name = "default"
	}

	return &Cache{
		maxCount:  maxCount,
		maxBytes:  maxBytes,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		hits:      metrics.GetOrCreateCounter(fmt.Sprintf(`pdict_cache_hits_total{cache=%q}`, name)),
		misses:    metrics.GetOrCreateCounter(fmt.Sprintf(`pdict_cache_misses_total{cache=%q}`, name)),
		evictions: metrics.GetOrCreateCounter(fmt.Sprintf(`pdict_cache_evictions_total{cache=%q}`, name)),
	}
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// Get returns the cached value bytes for an encoded key. The returned slice
// must be treated as read-only.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) Get(encodedKey []byte) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[string(encodedKey)]; ok {
		c.hits.Inc()
		c.evictList.MoveToFront(el)
		return el.Value.(*entry).value, true
	}
	c.misses.Inc()
	return nil, false
}

// Put caches the value bytes for an encoded key, evicting least-recently-used
// entries if a bound is exceeded. Values larger than the byte budget are not
// cached at all.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) Put(encodedKey, value []byte) {
	if c.maxCount == 0 || (c.maxBytes >= 0 && int64(len(value)) > c.maxBytes) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(encodedKey, value)
}

// Generation returns a counter that advances on every Invalidate and Purge.
// A reader that wants to fill the cache from data it read outside the cache
// lock snapshots the generation before the read and hands it to PutAt.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutAt caches the value bytes like Put, unless an invalidation happened after
// gen was observed. The check and the insert happen under one lock acquisition,
// so a fill racing a concurrent invalidation can never resurrect the bytes the
// invalidation dropped.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) PutAt(encodedKey, value []byte, gen uint64) {
	if c.maxCount == 0 || (c.maxBytes >= 0 && int64(len(value)) > c.maxBytes) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return
	}
	c.put(encodedKey, value)
}

// Invalidate drops the entry for an encoded key, if present. Every write
// through the dictionary calls this for the written key, so the cache can
// never serve a value older than the latest write issued through the same
// instance.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) Invalidate(encodedKey []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The generation advances even when the key is not cached: a pending fill
	// for an uncached key must be dropped all the same.
	c.gen++
	if el, ok := c.items[string(encodedKey)]; ok {
		c.removeElement(el)
	}
}

// Purge drops all entries.
//
// Thread-safety: safe for concurrent use.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	c.sizeBytes = 0
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SizeBytes returns the total payload size of all cached entries.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeBytes
}

// --------------------------------------------------------------------------
// Internal helpers (callers must hold c.mu)
// --------------------------------------------------------------------------

func (c *Cache) put(encodedKey, value []byte) {
	key := string(encodedKey)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		c.sizeBytes += int64(len(value)) - int64(len(e.value))
		e.value = value
		c.evictList.MoveToFront(el)
		c.evict()
		return
	}

	el := c.evictList.PushFront(&entry{key: key, value: value})
	c.items[key] = el
	c.sizeBytes += int64(len(value))
	c.evict()
}

func (c *Cache) evict() {
	for (c.maxCount >= 0 && len(c.items) > c.maxCount) ||
		(c.maxBytes >= 0 && c.sizeBytes > c.maxBytes) {
		el := c.evictList.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.evictions.Inc()
	}
}

func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.items, e.key)
	c.evictList.Remove(el)
	c.sizeBytes -= int64(len(e.value))
}
