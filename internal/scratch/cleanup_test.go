package scratch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tourneyreel/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldScratch(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	oldDir := filepath.Join(dir, ".assemble-123")
	if err := os.MkdirAll(filepath.Join(oldDir, "nested"), 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	oldList := filepath.Join(dir, ".concat-9.txt")
	if err := os.WriteFile(oldList, []byte("file 'a'\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	oldVideo := filepath.Join(dir, "Round 1: Court 1: A vs B.mp4")
	if err := os.WriteFile(oldVideo, []byte("x"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	for _, p := range []string{oldDir, oldList, oldVideo} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	recent := filepath.Join(dir, ".assemble-456")
	if err := os.Mkdir(recent, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
	if len(result.Removed) != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %#v", result)
	}
	for _, p := range []string{oldDir, oldList} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", p)
		}
	}
	for _, p := range []string{recent, oldVideo} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should still exist: %v", p, err)
		}
	}
}

func TestListReportsScratchSizes(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, ".assemble-1")
	if err := os.Mkdir(work, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(work, "main-0.mp4"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != ".assemble-1" || entries[0].Size != 100 {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	missing, err := List(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Fatalf("missing dir should list nothing, got %v %v", missing, err)
	}
}
