package dict

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ValentinKolb/pDict/lib/cache"
	"github.com/ValentinKolb/pDict/lib/codec"
	"github.com/ValentinKolb/pDict/lib/engine"
	"github.com/ValentinKolb/pDict/lib/engine/badger"
	"github.com/ValentinKolb/pDict/lib/query"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

const (
	// recordPrefix is prepended to every encoded key before it reaches the
	// engine. All stored keys share the prefix, so byte order among them is
	// unchanged, and the empty encoded key (a legal encoding of "") maps to
	// a non-empty engine key.
	recordPrefix byte = 'd'

	// defaultReadBufferSize is the scratch buffer used for the first
	// materialization attempt. Values longer than this cost one extra
	// engine round trip.
	defaultReadBufferSize = 512
)

// Options configures a dictionary during initialization.
type Options struct {
	// Cache configures the read cache (nil = defaults, see lib/cache).
	Cache *cache.Options
	// ReadBufferSize is the scratch buffer size for the first read attempt
	// of every value (0 = default).
	ReadBufferSize int
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// New creates a dictionary on top of an existing engine. The caller keeps
// ownership of the engine; Close does not close it.
//
// Thread-safety: the returned dictionary is safe for concurrent use.
func New[K any, V any](eng engine.IEngine, keys codec.IKeyCodec[K], values codec.IValueCodec[V], opts *Options) (IDictionary[K, V], error) {
	if eng == nil {
		return nil, NewError(RetCEngineFailure, "no engine provided")
	}
	if keys == nil || values == nil {
		return nil, NewError(RetCUnsupportedKeyType, "key and value codecs are required")
	}
	if opts == nil {
		opts = &Options{}
	}
	probe := opts.ReadBufferSize
	if probe <= 0 {
		probe = defaultReadBufferSize
	}
	return &dictionary[K, V]{
		eng:       eng,
		keys:      keys,
		values:    values,
		cache:     cache.New(opts.Cache),
		probeSize: probe,
	}, nil
}

// Open creates a dictionary backed by a badger engine at the given path,
// creating the store if it does not exist. The dictionary owns the engine
// and closes it on Close.
func Open[K any, V any](path string, keys codec.IKeyCodec[K], values codec.IValueCodec[V], opts *Options) (IDictionary[K, V], error) {
	eng, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, WrapError(RetCEngineFailure, "cannot open store", err)
	}
	d, err := New[K, V](eng, keys, values, opts)
	if err != nil {
		_ = eng.Close()
		return nil, err
	}
	d.(*dictionary[K, V]).ownsEngine = true
	return d, nil
}

// --------------------------------------------------------------------------
// Implementation
// --------------------------------------------------------------------------

type dictionary[K any, V any] struct {
	eng        engine.IEngine
	ownsEngine bool
	keys       codec.IKeyCodec[K]
	values     codec.IValueCodec[V]
	cache      *cache.Cache
	probeSize  int
	closed     atomic.Bool
}

// storedKey encodes a key and prepends the record prefix.
func (d *dictionary[K, V]) storedKey(key K) ([]byte, error) {
	enc, err := d.keys.Encode(key)
	if err != nil {
		return nil, wrapCodecErr("cannot encode key", err)
	}
	sk := make([]byte, 0, len(enc)+1)
	sk = append(sk, recordPrefix)
	return append(sk, enc...), nil
}

func (d *dictionary[K, V]) decodeValue(data []byte) (V, error) {
	v, err := d.values.Decode(data)
	if err != nil {
		var zero V
		return zero, wrapCodecErr("cannot decode value", err)
	}
	return v, nil
}

// view runs fn in a read-only engine transaction. Errors produced inside fn
// (already classified at their call sites, or raised by a caller-supplied
// enumeration callback) are propagated unchanged.
func (d *dictionary[K, V]) view(fn func(txn engine.ITxn) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	err := d.eng.View(fn)
	if errors.Is(err, engine.ErrClosed) {
		return WrapError(RetCClosed, "engine is closed", err)
	}
	return err
}

// update runs fn in a read-write engine transaction. Unclassified errors
// (e.g. a failed commit) are reported as engine failures; fn never invokes
// caller-supplied callbacks here.
func (d *dictionary[K, V]) update(fn func(txn engine.ITxn) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	err := d.eng.Update(fn)
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, engine.ErrClosed) {
		return WrapError(RetCClosed, "engine is closed", err)
	}
	return WrapError(RetCEngineFailure, "write transaction failed", err)
}

// materialize resolves a parsed column value into the value bytes. The first
// attempt uses a fixed-size scratch buffer; on WarnBufferTruncated the read
// is retried once with a buffer sized from DataLength.
func (d *dictionary[K, V]) materialize(txn engine.ITxn, cv engine.ColumnValue) ([]byte, error) {
	buf := make([]byte, d.probeSize)
	n, status, err := txn.Materialize(cv.Handle, buf)
	if err != nil {
		return nil, WrapError(RetCEngineFailure, "cannot materialize value", err)
	}
	if status == engine.WarnBufferTruncated {
		buf = make([]byte, cv.DataLength)
		n, status, err = txn.Materialize(cv.Handle, buf)
		if err != nil {
			return nil, WrapError(RetCEngineFailure, "cannot materialize value", err)
		}
	}
	if status != engine.StatusSuccess {
		return nil, NewError(RetCEngineFailure, fmt.Sprintf("value read ended with status %s", status))
	}
	return buf[:n], nil
}

// readColumn decodes a raw column-value record and materializes its value.
func (d *dictionary[K, V]) readColumn(txn engine.ITxn, raw []byte) ([]byte, error) {
	cv, err := engine.ParseColumnValue(raw)
	if err != nil {
		return nil, WrapError(RetCEngineFailure, "malformed column value", err)
	}
	if cv.Status.IsError() {
		return nil, NewError(RetCEngineFailure, fmt.Sprintf("column retrieval ended with status %s", cv.Status))
	}
	if cv.Status == engine.WarnNoMoreValues {
		return nil, ErrKeyNotFound
	}
	return d.materialize(txn, cv)
}

// readValue fetches the value bytes stored under an engine key.
func (d *dictionary[K, V]) readValue(txn engine.ITxn, sk []byte) ([]byte, error) {
	raw, err := txn.RetrieveColumn(sk, 1)
	if err != nil {
		if errors.Is(err, engine.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, WrapError(RetCEngineFailure, "cannot retrieve column", err)
	}
	return d.readColumn(txn, raw)
}

// --------------------------------------------------------------------------
// Point Operations
// --------------------------------------------------------------------------

func (d *dictionary[K, V]) Get(key K) (V, error) {
	var zero V
	sk, err := d.storedKey(key)
	if err != nil {
		return zero, err
	}
	if data, ok := d.cache.Get(sk); ok {
		return d.decodeValue(data)
	}

	// The generation is snapshotted before the read transaction opens. If a
	// concurrent write commits and invalidates the key while this read is in
	// flight, PutAt sees a newer generation and drops the fill instead of
	// caching bytes older than the acknowledged write.
	gen := d.cache.Generation()

	var data []byte
	err = d.view(func(txn engine.ITxn) error {
		var err error
		data, err = d.readValue(txn, sk)
		return err
	})
	if err != nil {
		return zero, err
	}

	d.cache.PutAt(sk, data, gen)
	return d.decodeValue(data)
}

func (d *dictionary[K, V]) TryGet(key K) (V, bool, error) {
	v, err := d.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		var zero V
		return zero, false, nil
	}
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v, true, nil
}

func (d *dictionary[K, V]) Set(key K, value V) error {
	sk, err := d.storedKey(key)
	if err != nil {
		return err
	}
	data, err := d.values.Encode(value)
	if err != nil {
		return wrapCodecErr("cannot encode value", err)
	}

	err = d.update(func(txn engine.ITxn) error {
		return txn.Set(sk, data)
	})
	if err != nil {
		return err
	}
	d.cache.Invalidate(sk)
	return nil
}

func (d *dictionary[K, V]) Add(key K, value V) error {
	sk, err := d.storedKey(key)
	if err != nil {
		return err
	}
	data, err := d.values.Encode(value)
	if err != nil {
		return wrapCodecErr("cannot encode value", err)
	}

	err = d.update(func(txn engine.ITxn) error {
		loaded, err := txn.Has(sk)
		if err != nil {
			return WrapError(RetCEngineFailure, "cannot probe key", err)
		}
		if loaded {
			return ErrDuplicateKey
		}
		return txn.Set(sk, data)
	})
	if err != nil {
		return err
	}
	d.cache.Invalidate(sk)
	return nil
}

func (d *dictionary[K, V]) Remove(key K) (bool, error) {
	sk, err := d.storedKey(key)
	if err != nil {
		return false, err
	}

	removed := false
	err = d.update(func(txn engine.ITxn) error {
		loaded, err := txn.Has(sk)
		if err != nil {
			return WrapError(RetCEngineFailure, "cannot probe key", err)
		}
		if !loaded {
			return nil
		}
		if err := txn.Delete(sk); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	d.cache.Invalidate(sk)
	return removed, nil
}

func (d *dictionary[K, V]) Has(key K) (bool, error) {
	sk, err := d.storedKey(key)
	if err != nil {
		return false, err
	}
	if _, ok := d.cache.Get(sk); ok {
		return true, nil
	}

	loaded := false
	err = d.view(func(txn engine.ITxn) error {
		var err error
		loaded, err = txn.Has(sk)
		if err != nil {
			return WrapError(RetCEngineFailure, "cannot probe key", err)
		}
		return nil
	})
	return loaded, err
}

// --------------------------------------------------------------------------
// Enumeration
// --------------------------------------------------------------------------

func (d *dictionary[K, V]) Count() (int, error) {
	count := 0
	err := d.view(func(txn engine.ITxn) error {
		c := txn.NewCursor()
		defer c.Close()
		for c.Seek([]byte{recordPrefix}); c.Valid(); c.Next() {
			k := c.Key()
			if len(k) == 0 || k[0] != recordPrefix {
				break
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (d *dictionary[K, V]) Each(fn func(key K, value V) (cont bool, err error)) error {
	return d.find(nil, fn)
}

// find drives every enumeration. A translatable predicate is answered with a
// single index seek plus the residual filter over encoded keys; a predicate
// the translator cannot answer degrades to a full scan with the same residual
// filter. Results are identical either way, only the amount of index walked
// differs.
func (d *dictionary[K, V]) find(pred *query.Predicate, fn func(key K, value V) (cont bool, err error)) error {
	var rng query.Range
	if pred != nil {
		r, err := query.Translate(pred)
		switch {
		case errors.Is(err, query.ErrNotTranslatable):
			// full scan, pred stays the residual filter
		case err != nil:
			return WrapError(RetCEngineFailure, "cannot translate predicate", err)
		default:
			rng = r
			if rng.Empty() {
				return nil
			}
		}
	}

	// Same fencing as in Get: fills from this scan are dropped if any write
	// invalidates the cache while the scan is running.
	gen := d.cache.Generation()

	return d.view(func(txn engine.ITxn) error {
		c := txn.NewCursor()
		defer c.Close()

		if rng.Lower != nil {
			start := make([]byte, 0, len(rng.Lower.Key)+1)
			start = append(start, recordPrefix)
			c.Seek(append(start, rng.Lower.Key...))
		} else {
			c.Seek([]byte{recordPrefix})
		}

		for ; c.Valid(); c.Next() {
			sk := c.Key()
			if len(sk) == 0 || sk[0] != recordPrefix {
				break
			}
			enc := sk[1:]

			if rng.Lower != nil && !rng.Lower.Inclusive && bytes.Equal(enc, rng.Lower.Key) {
				continue
			}
			if rng.Upper != nil {
				cmp := bytes.Compare(enc, rng.Upper.Key)
				if cmp > 0 || (cmp == 0 && !rng.Upper.Inclusive) {
					break
				}
			}
			if pred != nil && !pred.Matches(enc) {
				continue
			}

			key, err := d.keys.Decode(enc)
			if err != nil {
				return wrapCodecErr("cannot decode stored key", err)
			}
			data, err := d.readColumn(txn, c.Column())
			if err != nil {
				return err
			}
			d.cache.PutAt(sk, data, gen)
			value, err := d.decodeValue(data)
			if err != nil {
				return err
			}

			cont, err := fn(key, value)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func (d *dictionary[K, V]) GetEngineInfo() (engine.EngineInfo, error) {
	if d.closed.Load() {
		return engine.EngineInfo{}, ErrClosed
	}
	info, err := d.eng.GetInfo()
	if err != nil {
		return engine.EngineInfo{}, WrapError(RetCEngineFailure, "cannot read engine info", err)
	}
	return info, nil
}

func (d *dictionary[K, V]) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.cache.Purge()
	if d.ownsEngine {
		if err := d.eng.Close(); err != nil && !errors.Is(err, engine.ErrClosed) {
			return WrapError(RetCEngineFailure, "cannot close engine", err)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Error Classification
// --------------------------------------------------------------------------

func wrapCodecErr(msg string, err error) error {
	if errors.Is(err, codec.ErrUnsupportedKeyType) {
		return WrapError(RetCUnsupportedKeyType, msg, err)
	}
	return WrapError(RetCSerialization, msg, err)
}
