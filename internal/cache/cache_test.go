package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestResponseCache_SaveGet(t *testing.T) {
	c := &ResponseCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	data := []byte(`{"tables":[]}`)
	if err := c.Save(context.Background(), key, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if string(got) != string(data) {
		t.Fatalf("mismatch")
	}
}

func TestKeyFrom_ImagesChangeKey(t *testing.T) {
	base := KeyFrom("m", "p")
	withImg := KeyFrom("m", "p", []byte{1, 2, 3})
	otherImg := KeyFrom("m", "p", []byte{4, 5, 6})
	if base == withImg || withImg == otherImg {
		t.Fatalf("image bytes must contribute to the key")
	}
	if withImg != KeyFrom("m", "p", []byte{1, 2, 3}) {
		t.Fatalf("key must be deterministic")
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &ResponseCache{Dir: dir}
	key := KeyFrom("m", "old")
	if err := c.Save(context.Background(), key, []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Age the file beyond the cutoff.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.pathFor(key), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	removed, err := PurgeByAge(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok, _ := c.Get(context.Background(), key); ok {
		t.Fatal("expected entry purged")
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir() + "/cache"
	c := &ResponseCache{Dir: dir}
	_ = c.Save(context.Background(), KeyFrom("m", "p"), []byte("x"))
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("dir must be recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}
