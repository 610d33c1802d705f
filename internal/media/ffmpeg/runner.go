package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"tourneyreel/internal/logging"
)

const defaultBinary = "ffmpeg"

type commandRunner func(ctx context.Context, name string, args ...string) error

// Runner drives the ffmpeg binary for every media mutation tourneyreel performs.
type Runner struct {
	Binary string
	logger *slog.Logger
	run    commandRunner
}

// NewRunner constructs a Runner using the given binary, or "ffmpeg" when empty.
func NewRunner(binary string, logger *slog.Logger) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	return &Runner{
		Binary: binary,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (r *Runner) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

func (r *Runner) invoke(ctx context.Context, operation string, args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	r.logger.Debug("running ffmpeg",
		logging.String("operation", operation),
		logging.String("args", strings.Join(full, " ")),
	)
	return r.run(ctx, r.Binary, full...)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// FormatSeconds renders seconds the way ffmpeg accepts them on -ss/-to/-t.
func FormatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}
