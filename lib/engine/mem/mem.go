package mem

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/pDict/lib/engine"
	"github.com/google/btree"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// defaultDegree is the branching factor of the underlying B-tree.
	defaultDegree = 32
)

// --------------------------------------------------------------------------
// Core Memory Engine Structure
// --------------------------------------------------------------------------

// record is the on-tree unit: an encoded key and the value bytes stored
// under it. The tree is ordered by unsigned byte-wise key comparison, which
// is exactly the order the engine contract promises.
type record struct {
	key   []byte
	value []byte
}

func recordLess(a, b *record) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// memEngine implements engine.IEngine entirely in memory. Write transactions
// operate on a copy-on-write clone of the current tree and publish it only on
// success, which gives real rollback semantics without a log.
type memEngine struct {
	writeMu sync.Mutex                          // serializes Update transactions
	tree    atomic.Pointer[btree.BTreeG[*record]] // current committed state
	closed  atomic.Bool

	// operation counters for GetInfo
	reads  *xsync.Counter
	writes *xsync.Counter
}

// EngineOptions configures the memory engine during initialization.
type EngineOptions struct {
	Degree int // B-tree branching factor (0 = default)
}

// DefaultOptions returns the default memory engine options.
func DefaultOptions() *EngineOptions {
	return &EngineOptions{
		Degree: defaultDegree,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMemoryEngine creates a new in-memory engine with the specified options
// (optional). The engine is empty and ready for use.
//
// Thread-safety: the returned engine is safe for concurrent use; this
// function itself should only be called once per engine instance.
func NewMemoryEngine(opts *EngineOptions) engine.IEngine {
	if opts == nil {
		opts = DefaultOptions()
	}
	degree := opts.Degree
	if degree <= 0 {
		degree = defaultDegree
	}

	e := &memEngine{
		reads:  xsync.NewCounter(),
		writes: xsync.NewCounter(),
	}
	e.tree.Store(btree.NewG(degree, recordLess))
	return e
}

// --------------------------------------------------------------------------
// Interface Methods (docu see engine/interface.go)
// --------------------------------------------------------------------------

// View runs fn against an immutable snapshot of the committed state. Because
// the snapshot is just a pointer load, readers never block writers.
//
// Thread-safety: safe for concurrent use.
func (e *memEngine) View(fn func(txn engine.ITxn) error) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	e.reads.Inc()

	t := &memTxn{eng: e, tree: e.tree.Load(), readOnly: true}
	defer t.release()
	return fn(t)
}

// Update runs fn against a copy-on-write clone of the committed state. The
// clone is published only if fn returns nil; on error (or panic) the clone is
// discarded, so a failed transaction leaves no observable effects.
//
// Thread-safety: safe for concurrent use; write transactions are serialized.
func (e *memEngine) Update(fn func(txn engine.ITxn) error) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	e.writes.Inc()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	clone := e.tree.Load().Clone()
	t := &memTxn{eng: e, tree: clone}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	e.tree.Store(clone)
	return nil
}

func (e *memEngine) GetInfo() (engine.EngineInfo, error) {
	if e.closed.Load() {
		return engine.EngineInfo{}, engine.ErrClosed
	}

	tree := e.tree.Load()

	// estimate size by sampling without holding up writers
	var sizeBytes int64
	tree.Ascend(func(r *record) bool {
		sizeBytes += int64(len(r.key) + len(r.value))
		return true
	})

	meta := &struct {
		Keys   int    `json:"keys"`
		Reads  int64  `json:"read_txns"`
		Writes int64  `json:"write_txns"`
		Info   string `json:"info"`
	}{
		Keys:   tree.Len(),
		Reads:  e.reads.Value(),
		Writes: e.writes.Value(),
		Info:   "volatile engine, contents are lost when the process exits",
	}

	return engine.EngineInfo{
		SizeBytes:  sizeBytes,
		EngineType: engine.ImplMemory,
		Metadata:   meta,
	}, nil
}

func (e *memEngine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.tree.Store(btree.NewG(defaultDegree, recordLess))
	}
	return nil
}

// --------------------------------------------------------------------------
// Transaction
// --------------------------------------------------------------------------

// memTxn implements engine.ITxn over a tree snapshot (read-only) or clone
// (read-write). Handles issued by RetrieveColumn/cursors index into the
// txn-local handle table and die with the transaction.
type memTxn struct {
	eng      *memEngine
	tree     *btree.BTreeG[*record]
	readOnly bool
	handles  [][]byte
}

func (t *memTxn) release() {
	t.handles = nil
	t.tree = nil
}

// addHandle registers a value and returns an opaque token for it. Token 0 is
// reserved as "no handle".
func (t *memTxn) addHandle(value []byte) engine.Handle {
	t.handles = append(t.handles, value)
	return engine.Handle(len(t.handles))
}

func (t *memTxn) Set(key, value []byte) error {
	if t.readOnly {
		return engine.ErrTxnReadOnly
	}

	// copy to decouple the tree from caller-owned buffers
	r := &record{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	}
	t.tree.ReplaceOrInsert(r)
	return nil
}

func (t *memTxn) Delete(key []byte) error {
	if t.readOnly {
		return engine.ErrTxnReadOnly
	}
	t.tree.Delete(&record{key: key})
	return nil
}

func (t *memTxn) Has(key []byte) (bool, error) {
	_, ok := t.tree.Get(&record{key: key})
	return ok, nil
}

func (t *memTxn) RetrieveColumn(key []byte, tag uint32) ([]byte, error) {
	r, ok := t.tree.Get(&record{key: key})
	if !ok {
		return nil, engine.ErrKeyNotFound
	}
	return t.columnFor(r, tag), nil
}

// columnFor emits the raw column-value record for a stored record. The engine
// keeps a single occurrence per column, so any tag above 1 reports
// WarnNoMoreValues.
func (t *memTxn) columnFor(r *record, tag uint32) []byte {
	if tag > 1 {
		return engine.ColumnValue{
			Status: engine.WarnNoMoreValues,
			Tag:    tag,
		}.Encode()
	}
	return engine.ColumnValue{
		DataLength: uint32(len(r.value)),
		Status:     engine.StatusSuccess,
		Tag:        1,
		Handle:     t.addHandle(r.value),
	}.Encode()
}

func (t *memTxn) Materialize(h engine.Handle, buf []byte) (int, engine.Status, error) {
	if h == 0 || int(h) > len(t.handles) {
		return 0, engine.ErrCodeReadFailure, engine.ErrInvalidHandle
	}
	value := t.handles[h-1]

	n := copy(buf, value)
	if n < len(value) {
		return n, engine.WarnBufferTruncated, nil
	}
	return n, engine.StatusSuccess, nil
}

func (t *memTxn) NewCursor() engine.ICursor {
	return &memCursor{txn: t}
}

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

// memCursor walks the tree in ascending key order. Each movement re-descends
// from the current key, so the cursor stays valid across tree clones at
// O(log n) per step.
type memCursor struct {
	txn *memTxn
	cur *record
}

func (c *memCursor) Rewind() {
	c.cur = nil
	if r, ok := c.txn.tree.Min(); ok {
		c.cur = r
	}
}

func (c *memCursor) Seek(key []byte) {
	c.cur = nil
	c.txn.tree.AscendGreaterOrEqual(&record{key: key}, func(r *record) bool {
		c.cur = r
		return false
	})
}

func (c *memCursor) Valid() bool {
	return c.cur != nil
}

func (c *memCursor) Next() {
	if c.cur == nil {
		return
	}
	prev := c.cur
	c.cur = nil
	c.txn.tree.AscendGreaterOrEqual(prev, func(r *record) bool {
		if bytes.Equal(r.key, prev.key) {
			return true
		}
		c.cur = r
		return false
	})
}

func (c *memCursor) Key() []byte {
	if c.cur == nil {
		return nil
	}
	return c.cur.key
}

func (c *memCursor) Column() []byte {
	if c.cur == nil {
		return nil
	}
	return c.txn.columnFor(c.cur, 1)
}

func (c *memCursor) Close() {
	c.cur = nil
}
