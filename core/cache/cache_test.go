package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCache(t *testing.T) {
	c := NewCache()
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
}

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	key := "test-set-get"
	c.Set(key, "val", 0, nil)
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("nonexistent-key-xyz")
	if ok {
		t.Error("Get missing key: want false")
	}
}

func TestGetOrDefault(t *testing.T) {
	c := NewCache()
	key := "test-default"
	def := "default"
	if got := c.GetOrDefault(key, def); got != def {
		t.Errorf("GetOrDefault missing = %v, want %v", got, def)
	}
	c.Set(key, "stored", 0, nil)
	if got := c.GetOrDefault(key, def); got != "stored" {
		t.Errorf("GetOrDefault found = %v, want stored", got)
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"availability", 42}, 5, 0, nil)
	got, ok := c.GetN("availability", 42)
	if !ok || got != 5 {
		t.Errorf("GetN = %v %v, want 5 true", got, ok)
	}
	c.DeleteN("availability", 42)
	if _, ok := c.GetN("availability", 42); ok {
		t.Error("DeleteN: key should be gone")
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("avail-1", 3, 0, []string{"equipment:1"})
	c.Set("avail-1-detail", "x", 0, []string{"equipment:1"})
	c.Set("avail-2", 7, 0, []string{"equipment:2"})

	c.DeleteByTag("equipment:1")

	if _, ok := c.Get("avail-1"); ok {
		t.Error("avail-1 should be invalidated")
	}
	if _, ok := c.Get("avail-1-detail"); ok {
		t.Error("avail-1-detail should be invalidated")
	}
	if _, ok := c.Get("avail-2"); !ok {
		t.Error("avail-2 should survive unrelated tag invalidation")
	}
}

func TestGetKeysByTag(t *testing.T) {
	c := NewCache()
	c.Set("k1", 1, 0, []string{"shared"})
	c.Set("k2", 2, 0, []string{"shared"})
	keys := c.GetKeysByTag("shared")
	if len(keys) != 2 {
		t.Errorf("GetKeysByTag = %d keys, want 2", len(keys))
	}
}

func TestDumpToFile(t *testing.T) {
	c := NewCache()
	c.Set("dump-key", "dump-val", 0, nil)
	f := filepath.Join(os.TempDir(), "cache_dump_test.json")
	t.Cleanup(func() { os.Remove(f) })
	if err := c.DumpToFile(f); err != nil {
		t.Fatalf("DumpToFile: %v", err)
	}
	data, err := os.ReadFile(f)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if len(data) == 0 {
		t.Error("dump file is empty")
	}
}
