package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tourneyreel/internal/config"
	"tourneyreel/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestStartFinishLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := services.WithRunID(context.Background(), "run-1")

	done, err := store.Done(ctx, "court 1/1//a/b")
	if err != nil || done {
		t.Fatalf("Done on empty ledger = %v, %v", done, err)
	}
	if err := store.Start(ctx, "court 1/1//a/b", "A vs B"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	attempt, err := store.Get(ctx, "court 1/1//a/b")
	if err != nil || attempt == nil {
		t.Fatalf("Get failed: %v %#v", err, attempt)
	}
	if attempt.Status != StatusRunning || attempt.RunID != "run-1" || attempt.Attempts != 1 {
		t.Fatalf("unexpected running attempt: %#v", attempt)
	}

	if err := store.Finish(ctx, "court 1/1//a/b", "", errors.New("ffmpeg exploded")); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	attempt, _ = store.Get(ctx, "court 1/1//a/b")
	if attempt.Status != StatusFailed || attempt.Error != "ffmpeg exploded" {
		t.Fatalf("unexpected failed attempt: %#v", attempt)
	}

	if err := store.Start(ctx, "court 1/1//a/b", "A vs B"); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	output := filepath.Join(t.TempDir(), "a.mp4")
	if err := os.WriteFile(output, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "court 1/1//a/b", output, nil); err != nil {
		t.Fatalf("second Finish failed: %v", err)
	}
	attempt, _ = store.Get(ctx, "court 1/1//a/b")
	if attempt.Status != StatusDone || attempt.Attempts != 2 || attempt.Error != "" || attempt.Output != output {
		t.Fatalf("unexpected done attempt: %#v", attempt)
	}
	if !attempt.UpdatedAt.After(attempt.CreatedAt) {
		t.Fatalf("expected updated_at after created_at: %#v", attempt)
	}
	if done, _ := store.Done(ctx, "court 1/1//a/b"); !done {
		t.Fatal("expected key to be done")
	}

	if err := os.Remove(output); err != nil {
		t.Fatal(err)
	}
	if done, err := store.Done(ctx, "court 1/1//a/b"); err != nil || done {
		t.Fatalf("Done after output removal = %v, %v; want false", done, err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"k1", "k2", "k3"} {
		if err := store.Start(ctx, key, key); err != nil {
			t.Fatalf("Start %s: %v", key, err)
		}
	}
	if err := store.Finish(ctx, "k1", "out1", nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Key != "k1" {
		t.Fatalf("expected most recently updated first, got %#v", all)
	}

	running, err := store.List(ctx, StatusRunning)
	if err != nil {
		t.Fatalf("List running failed: %v", err)
	}
	if len(running) != 2 {
		t.Fatalf("expected two running attempts, got %d", len(running))
	}

	reset, err := store.ResetRunning(ctx)
	if err != nil || reset != 2 {
		t.Fatalf("ResetRunning = %d, %v", reset, err)
	}
	if err := store.Forget(ctx, "k2"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if got, _ := store.Get(ctx, "k2"); got != nil {
		t.Fatalf("expected k2 forgotten, got %#v", got)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
