package dict

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/pDict/lib/codec"
)

// TestOpenPersistence verifies that a dictionary opened on disk retains its
// entries across close and reopen.
func TestOpenPersistence(t *testing.T) {
	path := t.TempDir()

	d, err := Open(path, codec.Int64Keys(), codec.StringValues(), nil)
	if err != nil {
		t.Fatalf("failed to open dictionary: %v", err)
	}
	for i := int64(0); i < 25; i++ {
		if err := d.Set(i, fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	d, err = Open(path, codec.Int64Keys(), codec.StringValues(), nil)
	if err != nil {
		t.Fatalf("failed to reopen dictionary: %v", err)
	}
	defer d.Close()

	n, err := d.Count()
	if err != nil || n != 25 {
		t.Fatalf("expected 25 entries after reopen, got (%d, %v)", n, err)
	}
	v, err := d.Get(13)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != "value-13" {
		t.Errorf("expected 'value-13', got %q", v)
	}

	keys, err := d.Filter().Ge(20).Keys()
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(keys) != 5 || keys[0] != 20 || keys[4] != 24 {
		t.Errorf("expected keys 20..24, got %v", keys)
	}
}

// TestOpenInfo checks the engine metadata surfaced through the facade.
func TestOpenInfo(t *testing.T) {
	d, err := Open(t.TempDir(), codec.StringKeys(), codec.StringValues(), nil)
	if err != nil {
		t.Fatalf("failed to open dictionary: %v", err)
	}
	defer d.Close()

	info, err := d.GetEngineInfo()
	if err != nil {
		t.Fatalf("engine info failed: %v", err)
	}
	if info.EngineType != "badger" {
		t.Errorf("expected engine type 'badger', got %q", info.EngineType)
	}
	if info.Path == "" {
		t.Error("expected a non-empty path")
	}
}
