package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndResolve(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	path, err := store.Save("video_01.mp4", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("content = %q", data)
	}
	resolved, err := store.Resolve("video_01.mp4")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolve = %q, want %q", resolved, path)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"../escape.mp4", "..", "a/../../b", "", "   "} {
		if _, err := store.Resolve(key); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
	// Leading slashes and dot segments are normalized, not rejected.
	path, err := store.Resolve("/nested/./clip.mp4")
	if err != nil {
		t.Fatalf("resolve normalized key: %v", err)
	}
	if !strings.HasPrefix(path, store.BasePath()) {
		t.Fatalf("resolved path %q escapes root %q", path, store.BasePath())
	}
}

func TestListByExtension(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, name := range []string{"video_02.mp4", "video_01.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatalf("seed dir: %v", err)
	}

	names, err := store.ListByExtension(".mp4")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "video_01.mp4" || names[1] != "video_02.mp4" {
		t.Fatalf("names = %v", names)
	}
}

func TestRemoveMissingFileIsNoop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Remove("never-existed.mp4"); err != nil {
		t.Fatalf("remove: %v", err)
	}
}
