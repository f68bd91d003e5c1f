package kv

import (
	"strconv"

	"github.com/ValentinKolb/pDict/cmd/util"
	"github.com/ValentinKolb/pDict/lib/codec"
	"github.com/ValentinKolb/pDict/lib/dict"
	"github.com/ValentinKolb/pDict/lib/engine"
	"github.com/ValentinKolb/pDict/lib/engine/badger"
	"github.com/ValentinKolb/pDict/lib/engine/mem"
)

// store adapts one concrete dictionary instantiation to the string-in,
// string-out surface of the CLI. The key type is chosen at runtime via the
// key-type flag; keys are parsed from and formatted back to their command
// line representation.
type store struct {
	set   func(key, value string) error
	add   func(key, value string) error
	get   func(key string) (value string, err error)
	del   func(key string) (removed bool, err error)
	has   func(key string) (loaded bool, err error)
	count func() (int, error)
	scan  func(from, to string, fn func(key, value string) (bool, error)) error
	info  func() (engine.EngineInfo, error)
	close func() error
}

// openStore opens a dictionary according to the current CLI configuration.
func openStore() (*store, error) {
	conf, err := util.GetStoreConfig()
	if err != nil {
		return nil, err
	}

	switch conf.KeyType {
	case "int64":
		return newTypedStore[int64](conf,
			func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
			func(k int64) string { return strconv.FormatInt(k, 10) },
		)
	case "uint64":
		return newTypedStore[uint64](conf,
			func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) },
			func(k uint64) string { return strconv.FormatUint(k, 10) },
		)
	case "float64":
		return newTypedStore[float64](conf,
			func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
			func(k float64) string { return strconv.FormatFloat(k, 'g', -1, 64) },
		)
	default:
		return newTypedStore[string](conf,
			func(s string) (string, error) { return s, nil },
			func(k string) string { return k },
		)
	}
}

func newTypedStore[K any](conf *util.StoreConfig, parse func(string) (K, error), format func(K) string) (*store, error) {
	keys, err := codec.ForKey[K]()
	if err != nil {
		return nil, err
	}

	values := codec.StringValues()
	if conf.Compress {
		values, err = codec.CompressedValues(values)
		if err != nil {
			return nil, err
		}
	}

	var eng engine.IEngine
	switch conf.Engine {
	case "memory":
		eng = mem.NewMemoryEngine(nil)
	default:
		opts := badger.DefaultOptions(conf.Path)
		opts.LogLevel = conf.LogLevel
		eng, err = badger.Open(opts)
		if err != nil {
			return nil, err
		}
	}

	d, err := dict.New(eng, keys, values, conf.Dict)
	if err != nil {
		_ = eng.Close()
		return nil, err
	}

	return &store{
		set: func(key, value string) error {
			k, err := parse(key)
			if err != nil {
				return err
			}
			return d.Set(k, value)
		},
		add: func(key, value string) error {
			k, err := parse(key)
			if err != nil {
				return err
			}
			return d.Add(k, value)
		},
		get: func(key string) (string, error) {
			k, err := parse(key)
			if err != nil {
				return "", err
			}
			return d.Get(k)
		},
		del: func(key string) (bool, error) {
			k, err := parse(key)
			if err != nil {
				return false, err
			}
			return d.Remove(k)
		},
		has: func(key string) (bool, error) {
			k, err := parse(key)
			if err != nil {
				return false, err
			}
			return d.Has(k)
		},
		count: d.Count,
		scan: func(from, to string, fn func(key, value string) (bool, error)) error {
			f := d.Filter()
			if from != "" {
				k, err := parse(from)
				if err != nil {
					return err
				}
				f = f.Ge(k)
			}
			if to != "" {
				k, err := parse(to)
				if err != nil {
					return err
				}
				f = f.Lt(k)
			}
			return f.Each(func(k K, v string) (bool, error) {
				return fn(format(k), v)
			})
		},
		info: d.GetEngineInfo,
		close: func() error {
			if err := d.Close(); err != nil {
				_ = eng.Close()
				return err
			}
			return eng.Close()
		},
	}, nil
}
