package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tourneyreel/internal/config"
	"tourneyreel/internal/ledger"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/media/ffmpeg"
	"tourneyreel/internal/media/ffprobe"
	"tourneyreel/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	logPath    string

	runID string
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
		runID:        uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = services.Wrap(services.ErrConfiguration, "config", "--log-level", "", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerFor builds the run logger on first use. Console output goes to the
// command's stderr so stdout stays clean for tables and JSON.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		logger, logPath, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "logging unavailable: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger.With(logging.String(logging.FieldRunID, c.runID))
		c.logPath = logPath
		if cfg != nil && logPath != "" {
			logging.CleanupOldLogs(c.logger, cfg.Paths.LogDir, logging.LogFilePattern, cfg.Logging.RetentionDays, logPath)
		}
	})
	return c.logger
}

// runContext returns the command context tagged with this run's ID.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRunID(ctx, c.runID)
}

func (c *commandContext) prober() *ffprobe.Prober {
	return ffprobe.NewProber(c.configValue().Assembly.FFprobeBinary)
}

func (c *commandContext) ffmpeg(cmd *cobra.Command) *ffmpeg.Runner {
	return ffmpeg.NewRunner(c.configValue().Assembly.FFmpegBinary, c.loggerFor(cmd))
}

func (c *commandContext) openLedger() (*ledger.Store, error) {
	return ledger.Open(c.configValue())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
