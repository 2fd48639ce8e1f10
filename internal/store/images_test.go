package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := s.Save("a.png", []byte("data"), "http://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(img.Path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if string(data) != "data" {
		t.Fatalf("got %q, want %q", data, "data")
	}
	if img.SourceURL != "http://example.com/a" {
		t.Fatalf("source url not recorded: %q", img.SourceURL)
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	s, err := NewImageStore(t.TempDir(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Save("a.png", nil, ""); err != ErrEmptyImage {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestPruneByCount(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var oldest string
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		img, err := s.Save(name, []byte{byte(i + 1)}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i == 0 {
			oldest = img.Path
		}
	}

	if removed := s.Prune(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Fatalf("expected oldest file to be deleted, stat err = %v", err)
	}
	if s.Count() != 2 {
		t.Fatalf("expected 2 remaining, got %d", s.Count())
	}
}

func TestPruneByAge(t *testing.T) {
	dir := t.TempDir()

	// Pre-existing file with an old mtime is indexed at startup and pruned.
	old := filepath.Join(dir, "old.png")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := NewImageStore(dir, 0, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Save("fresh.png", []byte("y"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if removed := s.Prune(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected stale file to be deleted, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fresh.png")); err != nil {
		t.Fatalf("fresh file should survive: %v", err)
	}
}
