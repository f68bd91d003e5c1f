package badger

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/pDict/lib/engine"
	enginetesting "github.com/ValentinKolb/pDict/lib/engine/testing"
)

func newTestEngine(t testing.TB) engine.IEngine {
	t.Helper()

	opts := DefaultOptions(t.TempDir())
	opts.LogLevel = "error"

	e, err := Open(opts)
	if err != nil {
		t.Fatalf("failed to open badger engine: %v", err)
	}
	return e
}

func Test(t *testing.T) {
	enginetesting.RunEngineTests(t, "BadgerEngine", func(t testing.TB) engine.IEngine {
		return newTestEngine(t)
	})
}

func Benchmark(b *testing.B) {
	enginetesting.RunEngineBenchmarks(b, "BadgerEngine", func(t testing.TB) engine.IEngine {
		return newTestEngine(t)
	})
}

// Data written through the engine must survive a close/reopen cycle.
func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultOptions(dir)
	opts.LogLevel = "error"

	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}

	err = e.Update(func(txn engine.ITxn) error {
		return txn.Set([]byte("durable"), []byte("payload"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	err = reopened.View(func(txn engine.ITxn) error {
		raw, err := txn.RetrieveColumn([]byte("durable"), 1)
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
		if !bytes.Equal(buf, []byte("payload")) {
			t.Errorf("expected payload after reopen, got %s", buf)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
