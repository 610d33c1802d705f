package scratch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tourneyreel/internal/logging"
)

// Prefixes of the hidden working entries assembly leaves behind when a run is
// interrupted.
const (
	AssemblePrefix = ".assemble-"
	ConcatPrefix   = ".concat-"
)

// CleanResult contains the outcome of a scratch cleanup pass.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// IsScratch reports whether name is an assembly working entry.
func IsScratch(name string) bool {
	return strings.HasPrefix(name, AssemblePrefix) || strings.HasPrefix(name, ConcatPrefix)
}

// CleanStale removes scratch entries in dir older than maxAge. Entries from
// a run still in progress are younger than maxAge and are left alone.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !IsScratch(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logging.WarnWithContext(logger, "failed to remove stale scratch entry", "scratch_cleanup_failed",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check output directory permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale scratch entry",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}

	return result
}

// Entry describes a scratch file or directory.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the scratch entries in dir with their sizes.
func List(dir string) ([]Entry, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range entries {
		if !IsScratch(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		size, _ := diskUsage(path)
		out = append(out, Entry{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return out, nil
}

func diskUsage(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
