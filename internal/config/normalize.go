package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSchedule(); err != nil {
		return err
	}
	c.normalizeMatcher()
	c.normalizeAssembly()
	if err := c.normalizeCards(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogoDir, err = expandPath(strings.TrimSpace(c.Paths.LogoDir)); err != nil {
		return fmt.Errorf("paths.logo_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSchedule() error {
	c.Schedule.URL = strings.TrimSpace(c.Schedule.URL)
	if c.Schedule.URL == "" {
		if value, ok := os.LookupEnv(envScheduleURL); ok {
			c.Schedule.URL = strings.TrimSpace(value)
		}
	}
	c.Schedule.BracketURL = strings.TrimSpace(c.Schedule.BracketURL)
	if c.Schedule.BracketURL == "" {
		if value, ok := os.LookupEnv(envBracketURL); ok {
			c.Schedule.BracketURL = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Schedule.Path, err = expandPath(strings.TrimSpace(c.Schedule.Path)); err != nil {
		return fmt.Errorf("schedule.path: %w", err)
	}
	if c.Schedule.BracketPath, err = expandPath(strings.TrimSpace(c.Schedule.BracketPath)); err != nil {
		return fmt.Errorf("schedule.bracket_path: %w", err)
	}
	rounds := make([]string, 0, len(c.Schedule.RoundOrder))
	for _, round := range c.Schedule.RoundOrder {
		if trimmed := strings.TrimSpace(round); trimmed != "" {
			rounds = append(rounds, trimmed)
		}
	}
	if len(rounds) == 0 {
		rounds = append(rounds, DefaultRoundOrder...)
	}
	c.Schedule.RoundOrder = rounds
	if c.Schedule.TimeoutSeconds == 0 {
		c.Schedule.TimeoutSeconds = defaultScheduleTimeout
	}
	return nil
}

func (c *Config) normalizeMatcher() {
	ext := strings.ToLower(strings.TrimSpace(c.Matcher.Extension))
	c.Matcher.Extension = strings.TrimPrefix(ext, ".")
	if c.Matcher.Extension == "" {
		c.Matcher.Extension = defaultExtension
	}
	c.Matcher.CaptureOrder = strings.ToLower(strings.TrimSpace(c.Matcher.CaptureOrder))
	if c.Matcher.CaptureOrder == "" {
		c.Matcher.CaptureOrder = defaultCaptureOrder
	}
	markers := make([]string, 0, len(c.Matcher.BoundaryMarkers))
	seen := make(map[string]struct{}, len(c.Matcher.BoundaryMarkers))
	for _, marker := range c.Matcher.BoundaryMarkers {
		trimmed := strings.TrimSpace(marker)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		markers = append(markers, trimmed)
	}
	c.Matcher.BoundaryMarkers = markers
}

func (c *Config) normalizeAssembly() {
	c.Assembly.FFmpegBinary = strings.TrimSpace(c.Assembly.FFmpegBinary)
	if c.Assembly.FFmpegBinary == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	c.Assembly.FFprobeBinary = strings.TrimSpace(c.Assembly.FFprobeBinary)
	if c.Assembly.FFprobeBinary == "" {
		c.Assembly.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Assembly.Parallelism == 0 {
		c.Assembly.Parallelism = defaultParallelism
	}
	if c.Assembly.PlayoffRoundSeconds == 0 {
		c.Assembly.PlayoffRoundSeconds = defaultPlayoffRoundSeconds
	}
	if c.Assembly.SnippetSeconds == 0 {
		c.Assembly.SnippetSeconds = defaultSnippetSeconds
	}
}

func (c *Config) normalizeCards() error {
	c.Cards.Banner = strings.TrimSpace(c.Cards.Banner)
	if c.Cards.Banner == "" {
		if value, ok := os.LookupEnv(envCardBanner); ok {
			c.Cards.Banner = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Cards.FontPath, err = expandPath(strings.TrimSpace(c.Cards.FontPath)); err != nil {
		return fmt.Errorf("cards.font_path: %w", err)
	}
	c.Cards.FontColor = strings.TrimSpace(c.Cards.FontColor)
	if c.Cards.FontColor == "" {
		c.Cards.FontColor = defaultCardFontColor
	}
	c.Cards.Background = strings.TrimSpace(c.Cards.Background)
	if c.Cards.Background == "" {
		c.Cards.Background = defaultCardBackground
	}
	if c.Cards.LogoWidth == 0 {
		c.Cards.LogoWidth = defaultCardLogoWidth
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
