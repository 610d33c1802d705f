package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile writes size bytes of filler to path, creating parent
// directories. A size <= 0 writes a single byte. Recordings in tests are
// placeholders; their durations come from the stub ffprobe.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteRecordings creates small placeholder recordings in dir with strictly
// increasing modification times, in the order given.
func WriteRecordings(t testing.TB, dir string, names ...string) []string {
	t.Helper()

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	paths := make([]string, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		WriteFile(t, path, int64(64+i))
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}
