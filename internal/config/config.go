package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// OutputDir holds assembled videos. Empty means <recordings>/processed_videos.
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
	LogoDir   string `toml:"logo_dir"`
}

// Schedule describes where the tournament schedule comes from.
type Schedule struct {
	URL            string   `toml:"url"`
	Path           string   `toml:"path"`
	BracketURL     string   `toml:"bracket_url"`
	BracketPath    string   `toml:"bracket_path"`
	Courts         int      `toml:"courts"`
	RoundOrder     []string `toml:"round_order"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Matcher holds the operator-declared exceptions to automatic matching.
type Matcher struct {
	Extension          string   `toml:"extension"`
	MinDurationSeconds float64  `toml:"min_duration_seconds"`
	CaptureOrder       string   `toml:"capture_order"`
	BoundaryMarkers    []string `toml:"boundary_markers"`
	// MissedIndices maps a court number ("1", "2", ...) to zero-based
	// schedule positions that were never recorded.
	MissedIndices map[string][]int `toml:"missed_indices"`
}

// Assembly configures timeline assembly and the external transcoder.
type Assembly struct {
	FFmpegBinary        string  `toml:"ffmpeg_binary"`
	FFprobeBinary       string  `toml:"ffprobe_binary"`
	Parallelism         int     `toml:"parallelism"`
	IntroSeconds        float64 `toml:"intro_seconds"`
	OutroSeconds        float64 `toml:"outro_seconds"`
	PlayoffRoundSeconds float64 `toml:"playoff_round_seconds"`
	SnippetSeconds      float64 `toml:"snippet_seconds"`
}

// Cards configures the static intro/outro title cards.
type Cards struct {
	Banner     string `toml:"banner"`
	FontPath   string `toml:"font_path"`
	FontColor  string `toml:"font_color"`
	Background string `toml:"background"`
	LogoWidth  int    `toml:"logo_width"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tourneyreel.
//
// Configuration sections by subsystem:
//   - Paths: output, log, state, and team logo directories
//   - Schedule: spreadsheet CSV export location and court layout
//   - Matcher: boundary markers, missed games, capture ordering
//   - Assembly: ffmpeg/ffprobe binaries, card durations, parallelism
//   - Cards: title card banner and styling
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Schedule Schedule `toml:"schedule"`
	Matcher  Matcher  `toml:"matcher"`
	Assembly Assembly `toml:"assembly"`
	Cards    Cards    `toml:"cards"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tourneyreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is
// applied to the process environment first; existing variables win.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tourneyreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MissedIndicesFor returns the declared unrecorded schedule positions for a court.
func (c *Config) MissedIndicesFor(court int) []int {
	if c == nil || len(c.Matcher.MissedIndices) == 0 {
		return nil
	}
	values := c.Matcher.MissedIndices[strconv.Itoa(court)]
	out := make([]int, len(values))
	copy(out, values)
	return out
}

// OutputDirFor resolves where processed and final videos for a recordings
// directory are written.
func (c *Config) OutputDirFor(recordingsDir string) string {
	if c != nil && strings.TrimSpace(c.Paths.OutputDir) != "" {
		return c.Paths.OutputDir
	}
	return filepath.Join(recordingsDir, "processed_videos")
}

// ScheduleSource reports the configured CSV location for round robin or
// bracket schedules. Paths win over URLs.
func (c *Config) ScheduleSource(bracket bool) (path string, url string) {
	if bracket {
		return c.Schedule.BracketPath, c.Schedule.BracketURL
	}
	return c.Schedule.Path, c.Schedule.URL
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
