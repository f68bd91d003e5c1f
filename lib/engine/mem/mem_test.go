package mem

import (
	"testing"

	"github.com/ValentinKolb/pDict/lib/engine"
	enginetesting "github.com/ValentinKolb/pDict/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetesting.RunEngineTests(t, "MemoryEngine", func(t testing.TB) engine.IEngine {
		return NewMemoryEngine(nil)
	})
}

func Benchmark(b *testing.B) {
	enginetesting.RunEngineBenchmarks(b, "MemoryEngine", func(t testing.TB) engine.IEngine {
		return NewMemoryEngine(nil)
	})
}

// Snapshot isolation: a read transaction started before a write must not see
// the write.
func TestSnapshotIsolation(t *testing.T) {
	e := NewMemoryEngine(nil)
	defer e.Close()

	if err := e.Update(func(txn engine.ITxn) error {
		return txn.Set([]byte("k"), []byte("v1"))
	}); err != nil {
		t.Fatal(err)
	}

	err := e.View(func(ro engine.ITxn) error {
		// concurrent write commits while the view is open
		if err := e.Update(func(txn engine.ITxn) error {
			return txn.Set([]byte("k"), []byte("v2"))
		}); err != nil {
			return err
		}

		raw, err := ro.RetrieveColumn([]byte("k"), 1)
		if err != nil {
			return err
		}
		cv, err := engine.ParseColumnValue(raw)
		if err != nil {
			return err
		}
		buf := make([]byte, cv.DataLength)
		if _, _, err := ro.Materialize(cv.Handle, buf); err != nil {
			return err
		}
		if string(buf) != "v1" {
			t.Errorf("snapshot saw concurrent write: got %s", buf)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// a fresh view sees the committed write
	err = e.View(func(txn engine.ITxn) error {
		raw, err := txn.RetrieveColumn([]byte("k"), 1)
		if err != nil {
			return err
		}
		cv, err := engine.ParseColumnValue(raw)
		if err != nil {
			return err
		}
		buf := make([]byte, cv.DataLength)
		if _, _, err := txn.Materialize(cv.Handle, buf); err != nil {
			return err
		}
		if string(buf) != "v2" {
			t.Errorf("expected v2 in fresh view, got %s", buf)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetInfo(t *testing.T) {
	e := NewMemoryEngine(&EngineOptions{Degree: 8})
	defer e.Close()

	if err := e.Update(func(txn engine.ITxn) error {
		return txn.Set([]byte("abc"), []byte("def"))
	}); err != nil {
		t.Fatal(err)
	}

	info, err := e.GetInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.EngineType != engine.ImplMemory {
		t.Errorf("expected engine type %s, got %s", engine.ImplMemory, info.EngineType)
	}
	if info.SizeBytes != 6 {
		t.Errorf("expected 6 bytes, got %d", info.SizeBytes)
	}
}
