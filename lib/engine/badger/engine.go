package badger

import (
	"errors"
	"sync/atomic"

	"github.com/ValentinKolb/pDict/lib/engine"
	badgerdb "github.com/dgraph-io/badger/v4"
)

// --------------------------------------------------------------------------
// Core Badger Engine Structure
// --------------------------------------------------------------------------

// badgerEngine implements engine.IEngine on top of a badger database. Badger
// already provides everything the engine contract asks for: serializable
// transactions with rollback, an LSM index ordered by byte-wise key
// comparison, and out-of-line storage for large values in its value log (the
// overflow path). This adapter only translates between the two vocabularies.
type badgerEngine struct {
	db     *badgerdb.DB
	path   string
	closed atomic.Bool
}

// EngineOptions configures the badger engine during initialization.
type EngineOptions struct {
	// Path is the directory holding the store. Created if missing.
	Path string
	// SyncWrites forces an fsync on every commit. Slower, safer.
	SyncWrites bool
	// LogLevel controls the engine's internal logging ("debug", "info",
	// "warn", "error"). Empty means "warn".
	LogLevel string
}

// DefaultOptions returns the default badger engine options for the given
// store directory.
func DefaultOptions(path string) *EngineOptions {
	return &EngineOptions{
		Path:     path,
		LogLevel: "warn",
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// Open opens (or creates) a persistent engine at opts.Path.
//
// The on-disk store may be shared by multiple engine instances only to the
// extent badger allows it; concurrency control across processes is the
// substrate's business, not this adapter's.
func Open(opts *EngineOptions) (engine.IEngine, error) {
	if opts == nil {
		return nil, errors.New("badger engine: options with a path are required")
	}

	dbOpts := badgerdb.DefaultOptions(opts.Path)
	dbOpts.SyncWrites = opts.SyncWrites
	dbOpts.CompactL0OnClose = true
	dbOpts.Logger = newLogger(opts.LogLevel)

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	return &badgerEngine{db: db, path: opts.Path}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see engine/interface.go)
// --------------------------------------------------------------------------

func (e *badgerEngine) View(fn func(txn engine.ITxn) error) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	return e.db.View(func(txn *badgerdb.Txn) error {
		t := &badgerTxn{txn: txn, readOnly: true}
		defer t.release()
		return fn(t)
	})
}

func (e *badgerEngine) Update(fn func(txn engine.ITxn) error) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	// db.Update discards the badger transaction whenever fn fails, which is
	// exactly the rollback-before-propagation contract.
	return e.db.Update(func(txn *badgerdb.Txn) error {
		t := &badgerTxn{txn: txn}
		defer t.release()
		return fn(t)
	})
}

func (e *badgerEngine) GetInfo() (engine.EngineInfo, error) {
	if e.closed.Load() {
		return engine.EngineInfo{}, engine.ErrClosed
	}

	lsm, vlog := e.db.Size()

	meta := &struct {
		LSMBytes      int64 `json:"lsm_bytes"`
		ValueLogBytes int64 `json:"value_log_bytes"`
	}{
		LSMBytes:      lsm,
		ValueLogBytes: vlog,
	}

	return engine.EngineInfo{
		SizeBytes:  lsm + vlog,
		EngineType: engine.ImplBadger,
		Path:       e.path,
		Metadata:   meta,
	}, nil
}

func (e *badgerEngine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		return e.db.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Transaction
// --------------------------------------------------------------------------

// badgerTxn adapts a badger transaction to engine.ITxn. Handles are tokens
// into a txn-local key table; materialization re-reads the key inside the
// same transaction, so the value bytes are only fetched (and only from the
// value log) when a caller explicitly asks for them.
type badgerTxn struct {
	txn      *badgerdb.Txn
	readOnly bool
	handles  [][]byte
}

func (t *badgerTxn) release() {
	t.handles = nil
}

func (t *badgerTxn) addHandle(key []byte) engine.Handle {
	t.handles = append(t.handles, key)
	return engine.Handle(len(t.handles))
}

func (t *badgerTxn) Set(key, value []byte) error {
	if t.readOnly {
		return engine.ErrTxnReadOnly
	}
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	if t.readOnly {
		return engine.ErrTxnReadOnly
	}
	return t.txn.Delete(key)
}

func (t *badgerTxn) Has(key []byte) (bool, error) {
	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *badgerTxn) RetrieveColumn(key []byte, tag uint32) ([]byte, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, engine.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return t.columnFor(item, tag), nil
}

// columnFor emits the raw column-value record for a badger item. Only a
// single occurrence is stored per key, so tags above 1 report
// WarnNoMoreValues. The value is not read here; item.ValueSize comes from the
// table index.
func (t *badgerTxn) columnFor(item *badgerdb.Item, tag uint32) []byte {
	if tag > 1 {
		return engine.ColumnValue{
			Status: engine.WarnNoMoreValues,
			Tag:    tag,
		}.Encode()
	}
	return engine.ColumnValue{
		DataLength: uint32(item.ValueSize()),
		Status:     engine.StatusSuccess,
		Tag:        1,
		Handle:     t.addHandle(item.KeyCopy(nil)),
	}.Encode()
}

func (t *badgerTxn) Materialize(h engine.Handle, buf []byte) (int, engine.Status, error) {
	if h == 0 || int(h) > len(t.handles) {
		return 0, engine.ErrCodeReadFailure, engine.ErrInvalidHandle
	}
	key := t.handles[h-1]

	item, err := t.txn.Get(key)
	if err != nil {
		return 0, engine.ErrCodeReadFailure, err
	}

	var (
		n      int
		status = engine.StatusSuccess
	)
	err = item.Value(func(val []byte) error {
		n = copy(buf, val)
		if n < len(val) {
			status = engine.WarnBufferTruncated
		}
		return nil
	})
	if err != nil {
		return 0, engine.ErrCodeReadFailure, err
	}
	return n, status, nil
}

func (t *badgerTxn) NewCursor() engine.ICursor {
	iterOpts := badgerdb.DefaultIteratorOptions
	// key-only iteration; values are fetched on materialization
	iterOpts.PrefetchValues = false
	return &badgerCursor{txn: t, it: t.txn.NewIterator(iterOpts)}
}

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

type badgerCursor struct {
	txn *badgerTxn
	it  *badgerdb.Iterator
}

func (c *badgerCursor) Rewind()         { c.it.Rewind() }
func (c *badgerCursor) Seek(key []byte) { c.it.Seek(key) }
func (c *badgerCursor) Valid() bool     { return c.it.Valid() }
func (c *badgerCursor) Next()           { c.it.Next() }

func (c *badgerCursor) Key() []byte {
	return c.it.Item().Key()
}

func (c *badgerCursor) Column() []byte {
	return c.txn.columnFor(c.it.Item(), 1)
}

func (c *badgerCursor) Close() {
	c.it.Close()
}
