package recording

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tourneyreel/internal/config"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/services"
)

// File is one recording on disk.
type File struct {
	Name        string
	Path        string
	ModTime     time.Time
	CaptureTime time.Time
	Seq         Name
	// Parsed is false when Name does not follow the camera convention; the
	// matcher then treats the file as its own recording.
	Parsed bool
}

// GroupKey identifies the continuous recording this file belongs to.
func (f File) GroupKey() string {
	if !f.Parsed {
		return "name:" + f.Name
	}
	return f.Seq.Prefix + f.Seq.Counter
}

// CaptureTimer reads the embedded capture timestamp of a media file.
type CaptureTimer interface {
	CaptureTime(ctx context.Context, path string) (time.Time, bool, error)
}

// ListOptions control how a recordings directory is read.
type ListOptions struct {
	Extension string
	// Order is config.CaptureOrderModTime or config.CaptureOrderCreationTime.
	Order  string
	Timer  CaptureTimer
	Logger *slog.Logger
}

// List returns the recordings in dir sorted by capture order.
func List(ctx context.Context, dir string, opts ListOptions) ([]File, error) {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(opts.Extension)), ".")
	if ext == "" {
		ext = "mp4"
	}
	logger := logging.NewComponentLogger(opts.Logger, "recording")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "recording", "list", dir, err)
		}
		return nil, services.Wrap(services.ErrValidation, "recording", "list", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) != ext {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "recording", "stat", name, err)
		}
		file := File{
			Name:        name,
			Path:        filepath.Join(dir, name),
			ModTime:     info.ModTime(),
			CaptureTime: info.ModTime(),
		}
		if seq, err := ParseName(name); err == nil {
			file.Seq = seq
			file.Parsed = true
		} else {
			logger.Debug("recording name not recognized", logging.String("file", name))
		}
		files = append(files, file)
	}

	switch opts.Order {
	case "", config.CaptureOrderModTime:
	case config.CaptureOrderCreationTime:
		if opts.Timer == nil {
			return nil, services.Wrap(services.ErrConfiguration, "recording", "list", "creation_time order requires a capture timer", nil)
		}
		for i := range files {
			ts, ok, err := opts.Timer.CaptureTime(ctx, files[i].Path)
			if err != nil {
				return nil, err
			}
			if !ok {
				logging.WarnWithContext(logger, "recording has no creation_time tag; using modification time", "capture_time_missing",
					logging.String("file", files[i].Name),
					logging.String(logging.FieldImpact, "file ordered by modification time"),
				)
				continue
			}
			files[i].CaptureTime = ts
		}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "recording", "list", fmt.Sprintf("unknown capture order %q", opts.Order), nil)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].CaptureTime.Equal(files[j].CaptureTime) {
			return files[i].CaptureTime.Before(files[j].CaptureTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Range returns the files from first through last inclusive, in capture order.
func Range(files []File, first, last string) ([]File, error) {
	start, end := -1, -1
	for i, f := range files {
		if f.Name == first && start < 0 {
			start = i
		}
		if f.Name == last {
			end = i
		}
	}
	if start < 0 {
		return nil, services.Wrap(services.ErrNotFound, "recording", "range", first, nil)
	}
	if end < 0 {
		return nil, services.Wrap(services.ErrNotFound, "recording", "range", last, nil)
	}
	if end < start {
		return nil, services.Wrap(services.ErrValidation, "recording", "range",
			fmt.Sprintf("%s was recorded after %s", first, last), nil)
	}
	return append([]File(nil), files[start:end+1]...), nil
}

// Paths returns the path of every file.
func Paths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
