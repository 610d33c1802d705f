package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tourneyreel/internal/config"
)

// LogFilePattern matches the per-run log files written inside the log directory.
const LogFilePattern = "tourneyreel-*.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives terminal output. Nil means stderr.
	Writer io.Writer
	// Color enables ANSI level colours on the console handler.
	Color bool
	// FilePath, when set, receives an uncoloured copy of every record.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	handlers := []slog.Handler{buildHandler(format, writer, levelVar, addSource, opts.Color)}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, buildHandler(format, file, levelVar, addSource, false))
	}

	return slog.New(newFanoutHandler(handlers...)), nil
}

// NewFromConfig creates a logger using application config, writing terminal
// output to w and a copy to a per-run log file. It returns the log file path
// (empty when no log directory is configured).
func NewFromConfig(cfg *config.Config, w io.Writer) (*slog.Logger, string, error) {
	if w == nil {
		w = os.Stderr
	}
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console", Writer: w, Color: ShouldColorize(w)})
		return logger, "", err
	}

	var logPath string
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, "", fmt.Errorf("ensure log directory: %w", err)
		}
		logPath = filepath.Join(cfg.Paths.LogDir, RunLogName(time.Now()))
	}

	logger, err := New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Writer:   w,
		Color:    ShouldColorize(w),
		FilePath: logPath,
	})
	if err != nil {
		return nil, "", err
	}
	return logger, logPath, nil
}

// RunLogName returns the log file name for a run started at ts.
func RunLogName(ts time.Time) string {
	return "tourneyreel-" + ts.Format("20060102-150405") + ".log"
}

func buildHandler(format string, w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	if format == "json" {
		return newJSONHandler(w, lvl, addSource)
	}
	return newConsoleHandler(w, lvl, addSource, color)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
