package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tourneyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogoDir = ""
	cfgVal.Schedule.URL = ""
	cfgVal.Schedule.BracketURL = ""
	cfgVal.Cards.Banner = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSchedule writes csv into the test directory and points the round robin
// (or bracket) schedule path at it.
func WithSchedule(csv string, bracket bool) ConfigOption {
	return func(b *configBuilder) {
		name := "schedule.csv"
		if bracket {
			name = "bracket.csv"
		}
		path := filepath.Join(b.baseDir, name)
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			b.t.Fatalf("write schedule: %v", err)
		}
		if bracket {
			b.cfg.Schedule.BracketPath = path
		} else {
			b.cfg.Schedule.Path = path
		}
	}
}

// WithMissedIndices declares unrecorded schedule positions for a court.
func WithMissedIndices(court string, indices ...int) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Matcher.MissedIndices == nil {
			b.cfg.Matcher.MissedIndices = map[string][]int{}
		}
		b.cfg.Matcher.MissedIndices[court] = indices
	}
}

// WithStubbedBinaries writes do-nothing executables for names (ffmpeg and
// ffprobe when empty), prepends their directory to PATH for the test, and
// points the assembly binaries at them.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "ffmpeg":
				b.cfg.Assembly.FFmpegBinary = target
			case "ffprobe":
				b.cfg.Assembly.FFprobeBinary = target
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
