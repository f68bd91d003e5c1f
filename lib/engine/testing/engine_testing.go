package testing

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/ValentinKolb/pDict/lib/engine"
)

// EngineFactory is a function that creates a new instance of an engine
// implementation for one test.
type EngineFactory func(t testing.TB) engine.IEngine

// RunEngineTests runs the conformance test suite for an engine implementation.
// Every engine wired into the dictionary layer must pass this suite.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Retrieve", func(t *testing.T) {
			testSetRetrieve(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory(t))
		})

		t.Run("KeyOrdering", func(t *testing.T) {
			testKeyOrdering(t, factory(t))
		})

		t.Run("CursorSeek", func(t *testing.T) {
			testCursorSeek(t, factory(t))
		})

		t.Run("TruncatedRead", func(t *testing.T) {
			testTruncatedRead(t, factory(t))
		})

		t.Run("NoMoreValues", func(t *testing.T) {
			testNoMoreValues(t, factory(t))
		})

		t.Run("DeferredMaterialization", func(t *testing.T) {
			testDeferredMaterialization(t, factory(t))
		})

		t.Run("RollbackAtomicity", func(t *testing.T) {
			testRollbackAtomicity(t, factory(t))
		})

		t.Run("ReadOnlyTxn", func(t *testing.T) {
			testReadOnlyTxn(t, factory(t))
		})

		t.Run("InvalidHandle", func(t *testing.T) {
			testInvalidHandle(t, factory(t))
		})

		t.Run("LargeValue", func(t *testing.T) {
			testLargeValue(t, factory(t))
		})

		t.Run("Closed", func(t *testing.T) {
			testClosed(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// retrieve reads the full value for key inside txn: column record, parse,
// materialize with an exact-size buffer.
func retrieve(t testing.TB, txn engine.ITxn, key []byte) ([]byte, error) {
	t.Helper()

	raw, err := txn.RetrieveColumn(key, 1)
	if err != nil {
		return nil, err
	}
	cv, err := engine.ParseColumnValue(raw)
	if err != nil {
		t.Fatalf("engine emitted malformed column record: %v", err)
	}
	if cv.Status != engine.StatusSuccess {
		t.Fatalf("expected success status, got %v", cv.Status)
	}

	buf := make([]byte, cv.DataLength)
	n, status, err := txn.Materialize(cv.Handle, buf)
	if err != nil {
		return nil, err
	}
	if status != engine.StatusSuccess {
		t.Fatalf("expected success on exact-size materialization, got %v", status)
	}
	return buf[:n], nil
}

func mustSet(t testing.TB, e engine.IEngine, key, value string) {
	t.Helper()
	if err := e.Update(func(txn engine.ITxn) error {
		return txn.Set([]byte(key), []byte(value))
	}); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetRetrieve(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "test-key", "test-value1")

	err := e.View(func(txn engine.ITxn) error {
		value, err := retrieve(t, txn, []byte("test-key"))
		if err != nil {
			return err
		}
		if !bytes.Equal(value, []byte("test-value1")) {
			t.Errorf("expected value test-value1, got %s", value)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	// overwrite
	mustSet(t, e, "test-key", "test-value2")

	err = e.View(func(txn engine.ITxn) error {
		value, err := retrieve(t, txn, []byte("test-key"))
		if err != nil {
			return err
		}
		if !bytes.Equal(value, []byte("test-value2")) {
			t.Errorf("expected value test-value2, got %s", value)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	// absent key
	err = e.View(func(txn engine.ITxn) error {
		_, err := txn.RetrieveColumn([]byte("nonexistent-key"), 1)
		if !errors.Is(err, engine.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testDelete(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "delete-me", "value")

	err := e.Update(func(txn engine.ITxn) error {
		return txn.Delete([]byte("delete-me"))
	})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	err = e.View(func(txn engine.ITxn) error {
		if _, err := txn.RetrieveColumn([]byte("delete-me"), 1); !errors.Is(err, engine.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	// deleting an absent key is not an error
	err = e.Update(func(txn engine.ITxn) error {
		return txn.Delete([]byte("never-existed"))
	})
	if err != nil {
		t.Errorf("deleting an absent key must not fail, got %v", err)
	}
}

func testHas(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "present", "value")

	err := e.View(func(txn engine.ITxn) error {
		if ok, err := txn.Has([]byte("present")); err != nil || !ok {
			t.Errorf("expected Has(present)=true, got %v, %v", ok, err)
		}
		if ok, err := txn.Has([]byte("absent")); err != nil || ok {
			t.Errorf("expected Has(absent)=false, got %v, %v", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testKeyOrdering(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// insert in shuffled order, expect iteration in byte order
	keys := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		keys = append(keys, fmt.Sprintf("key-%04d", i))
	}
	shuffled := append([]string(nil), keys...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	err := e.Update(func(txn engine.ITxn) error {
		for _, k := range shuffled {
			if err := txn.Set([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("bulk insert failed: %v", err)
	}

	var got []string
	err = e.View(func(txn engine.ITxn) error {
		c := txn.NewCursor()
		defer c.Close()
		for c.Rewind(); c.Valid(); c.Next() {
			got = append(got, string(c.Key()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}

	if len(got) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(got))
	}
	if !sort.StringsAreSorted(got) {
		t.Error("cursor did not yield keys in ascending order")
	}
	for i := range keys {
		if got[i] != keys[i] {
			t.Fatalf("at position %d: expected %s, got %s", i, keys[i], got[i])
		}
	}
}

func testCursorSeek(t *testing.T, e engine.IEngine) {
	defer e.Close()

	for _, k := range []string{"b", "d", "f"} {
		mustSet(t, e, k, "v")
	}

	err := e.View(func(txn engine.ITxn) error {
		c := txn.NewCursor()
		defer c.Close()

		// exact hit
		c.Seek([]byte("d"))
		if !c.Valid() || string(c.Key()) != "d" {
			t.Errorf("Seek(d): expected d, got valid=%v key=%s", c.Valid(), c.Key())
		}

		// between keys: first key >= target
		c.Seek([]byte("c"))
		if !c.Valid() || string(c.Key()) != "d" {
			t.Errorf("Seek(c): expected d, got valid=%v key=%s", c.Valid(), c.Key())
		}

		// before all keys
		c.Seek([]byte("a"))
		if !c.Valid() || string(c.Key()) != "b" {
			t.Errorf("Seek(a): expected b, got valid=%v key=%s", c.Valid(), c.Key())
		}

		// past all keys
		c.Seek([]byte("g"))
		if c.Valid() {
			t.Errorf("Seek(g): expected invalid cursor, got key=%s", c.Key())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testTruncatedRead(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "key", "0123456789")

	err := e.View(func(txn engine.ITxn) error {
		raw, err := txn.RetrieveColumn([]byte("key"), 1)
		if err != nil {
			return err
		}
		cv, err := engine.ParseColumnValue(raw)
		if err != nil {
			return err
		}
		if cv.DataLength != 10 {
			t.Errorf("expected DataLength=10, got %d", cv.DataLength)
		}

		// short buffer: partial copy + warning, not an error
		small := make([]byte, 4)
		n, status, err := txn.Materialize(cv.Handle, small)
		if err != nil {
			t.Fatalf("truncated materialization must not fail: %v", err)
		}
		if status != engine.WarnBufferTruncated {
			t.Errorf("expected WarnBufferTruncated, got %v", status)
		}
		if n != 4 || !bytes.Equal(small, []byte("0123")) {
			t.Errorf("expected 4 byte prefix 0123, got n=%d buf=%s", n, small)
		}

		// recover with a DataLength-sized buffer
		full := make([]byte, cv.DataLength)
		n, status, err = txn.Materialize(cv.Handle, full)
		if err != nil {
			return err
		}
		if status != engine.StatusSuccess || n != 10 || !bytes.Equal(full, []byte("0123456789")) {
			t.Errorf("retry with larger buffer failed: n=%d status=%v buf=%s", n, status, full)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testNoMoreValues(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "key", "value")

	err := e.View(func(txn engine.ITxn) error {
		raw, err := txn.RetrieveColumn([]byte("key"), 2)
		if err != nil {
			return err
		}
		cv, err := engine.ParseColumnValue(raw)
		if err != nil {
			return err
		}
		if cv.Status != engine.WarnNoMoreValues {
			t.Errorf("expected WarnNoMoreValues for tag 2, got %v", cv.Status)
		}
		if cv.Tag != 2 {
			t.Errorf("expected tag echoed back as 2, got %d", cv.Tag)
		}
		if cv.Handle != 0 {
			t.Errorf("expected no handle for missing occurrence, got %d", cv.Handle)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testDeferredMaterialization(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "key", "value")

	// probing for an occurrence must work without ever materializing
	err := e.View(func(txn engine.ITxn) error {
		raw, err := txn.RetrieveColumn([]byte("key"), 1)
		if err != nil {
			return err
		}
		cv, err := engine.ParseColumnValue(raw)
		if err != nil {
			return err
		}
		if cv.Status != engine.StatusSuccess || cv.Handle == 0 {
			t.Errorf("expected data present with handle, got %+v", cv)
		}
		// handle deliberately never resolved
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testRollbackAtomicity(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustSet(t, e, "stable", "before")

	errBoom := errors.New("boom")
	err := e.Update(func(txn engine.ITxn) error {
		if err := txn.Set([]byte("stable"), []byte("after")); err != nil {
			return err
		}
		if err := txn.Set([]byte("new-key"), []byte("x")); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected the inner error to propagate, got %v", err)
	}

	err = e.View(func(txn engine.ITxn) error {
		value, err := retrieve(t, txn, []byte("stable"))
		if err != nil {
			return err
		}
		if !bytes.Equal(value, []byte("before")) {
			t.Errorf("rolled back write is visible: got %s", value)
		}
		if ok, _ := txn.Has([]byte("new-key")); ok {
			t.Error("rolled back insert is visible")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testReadOnlyTxn(t *testing.T, e engine.IEngine) {
	defer e.Close()

	err := e.View(func(txn engine.ITxn) error {
		if err := txn.Set([]byte("k"), []byte("v")); !errors.Is(err, engine.ErrTxnReadOnly) {
			t.Errorf("expected ErrTxnReadOnly from Set in View, got %v", err)
		}
		if err := txn.Delete([]byte("k")); !errors.Is(err, engine.ErrTxnReadOnly) {
			t.Errorf("expected ErrTxnReadOnly from Delete in View, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testInvalidHandle(t *testing.T, e engine.IEngine) {
	defer e.Close()

	err := e.View(func(txn engine.ITxn) error {
		if _, _, err := txn.Materialize(engine.Handle(12345), make([]byte, 8)); !errors.Is(err, engine.ErrInvalidHandle) {
			t.Errorf("expected ErrInvalidHandle, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testLargeValue(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// well past any inline column capacity; exercises the overflow path
	large := make([]byte, 1<<20)
	for i := range large {
		large[i] = byte(i % 251)
	}

	err := e.Update(func(txn engine.ITxn) error {
		return txn.Set([]byte("large"), large)
	})
	if err != nil {
		t.Fatalf("Set of large value failed: %v", err)
	}

	err = e.View(func(txn engine.ITxn) error {
		value, err := retrieve(t, txn, []byte("large"))
		if err != nil {
			return err
		}
		if !bytes.Equal(value, large) {
			t.Error("large value did not round-trip")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func testClosed(t *testing.T, e engine.IEngine) {
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := e.View(func(engine.ITxn) error { return nil }); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("expected ErrClosed from View, got %v", err)
	}
	if err := e.Update(func(engine.ITxn) error { return nil }); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("expected ErrClosed from Update, got %v", err)
	}
}
