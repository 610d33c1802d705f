package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateCards(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Courts <= 0 {
		return errors.New("schedule.courts must be positive")
	}
	if c.Schedule.TimeoutSeconds <= 0 {
		return errors.New("schedule.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.MinDurationSeconds < 0 {
		return errors.New("matcher.min_duration_seconds must not be negative")
	}
	switch c.Matcher.CaptureOrder {
	case CaptureOrderModTime, CaptureOrderCreationTime:
	default:
		return fmt.Errorf("matcher.capture_order: unsupported value %q (use %q or %q)",
			c.Matcher.CaptureOrder, CaptureOrderModTime, CaptureOrderCreationTime)
	}
	for court, indices := range c.Matcher.MissedIndices {
		n, err := strconv.Atoi(court)
		if err != nil || n <= 0 || n > c.Schedule.Courts {
			return fmt.Errorf("matcher.missed_indices: court key %q must be a number between 1 and %d", court, c.Schedule.Courts)
		}
		for _, idx := range indices {
			if idx < 0 {
				return fmt.Errorf("matcher.missed_indices.%s: index %d must not be negative", court, idx)
			}
		}
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if c.Assembly.Parallelism < 1 {
		return errors.New("assembly.parallelism must be at least 1")
	}
	if c.Assembly.IntroSeconds < 0 || c.Assembly.OutroSeconds < 0 {
		return errors.New("assembly.intro_seconds and assembly.outro_seconds must not be negative")
	}
	if c.Assembly.PlayoffRoundSeconds <= 0 {
		return errors.New("assembly.playoff_round_seconds must be positive")
	}
	if c.Assembly.SnippetSeconds <= 0 {
		return errors.New("assembly.snippet_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCards() error {
	if c.Cards.LogoWidth <= 0 {
		return errors.New("cards.logo_width must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
