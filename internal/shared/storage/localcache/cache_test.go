package localcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestSaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var got []entry
	found, err := cache.Load(ctx, KeyPositions, &got)
	if err != nil || found {
		t.Fatalf("expected empty cache, found=%v err=%v", found, err)
	}

	want := []entry{{ID: "1", Name: "Backend Engineer"}}
	if err := cache.Save(ctx, KeyPositions, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	found, err = cache.Load(ctx, KeyPositions, &got)
	if err != nil || !found {
		t.Fatalf("expected stored value, found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := cache.Remove(ctx, KeyPositions); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := cache.Remove(ctx, KeyPositions); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
	got = nil
	found, _ = cache.Load(ctx, KeyPositions, &got)
	if found {
		t.Fatalf("expected key removed")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache, _ := New(dir)
	if err := cache.Save(context.Background(), KeyHistory, []int{1, 2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != KeyHistory+".json" {
		t.Fatalf("unexpected files: %v", entries)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	cache, _ := New(t.TempDir())
	for _, key := range []string{"../etc", "a/b", "", ".hidden", "UPPER"} {
		if err := cache.Save(context.Background(), key, 1); err == nil {
			t.Fatalf("expected key %q rejected", key)
		}
	}
}

func TestLoadReportsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	cache, _ := New(dir)
	if err := os.WriteFile(filepath.Join(dir, KeyUsers+".json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var v []entry
	if _, err := cache.Load(context.Background(), KeyUsers, &v); err == nil {
		t.Fatalf("expected decode error")
	}
}
