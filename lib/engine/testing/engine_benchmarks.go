package testing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/pDict/lib/engine"
)

// RunEngineBenchmarks runs all benchmarks for an engine implementation.
func RunEngineBenchmarks(b *testing.B, name string, factory EngineFactory) {
	b.Run(name+"/Set", func(b *testing.B) {
		benchmarkSet(b, factory(b))
	})

	b.Run(name+"/Retrieve", func(b *testing.B) {
		benchmarkRetrieve(b, factory(b))
	})

	b.Run(name+"/Scan", func(b *testing.B) {
		benchmarkScan(b, factory(b))
	})
}

const benchKeyCount = 10_000

func seedEngine(b *testing.B, e engine.IEngine) {
	b.Helper()
	err := e.Update(func(txn engine.ITxn) error {
		for i := 0; i < benchKeyCount; i++ {
			if err := txn.Set([]byte(fmt.Sprintf("key-%08d", i)), []byte("benchmark-payload")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.Fatalf("seeding failed: %v", err)
	}
}

func benchmarkSet(b *testing.B, e engine.IEngine) {
	defer e.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := e.Update(func(txn engine.ITxn) error {
			return txn.Set([]byte(fmt.Sprintf("key-%08d", i)), []byte("benchmark-payload"))
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkRetrieve(b *testing.B, e engine.IEngine) {
	defer e.Close()
	seedEngine(b, e)

	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%08d", rng.Intn(benchKeyCount)))
		err := e.View(func(txn engine.ITxn) error {
			raw, err := txn.RetrieveColumn(key, 1)
			if err != nil {
				return err
			}
			cv, err := engine.ParseColumnValue(raw)
			if err != nil {
				return err
			}
			_, _, err = txn.Materialize(cv.Handle, buf)
			return err
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkScan(b *testing.B, e engine.IEngine) {
	defer e.Close()
	seedEngine(b, e)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		err := e.View(func(txn engine.ITxn) error {
			c := txn.NewCursor()
			defer c.Close()
			for c.Rewind(); c.Valid(); c.Next() {
				count++
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		if count != benchKeyCount {
			b.Fatalf("expected %d keys, scanned %d", benchKeyCount, count)
		}
	}
}
