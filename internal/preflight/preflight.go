package preflight

import (
	"context"
	"time"

	"tourneyreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// recordingsDir is optional; when set, it and its output directory are
// checked too.
func RunAll(ctx context.Context, cfg *config.Config, recordingsDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: status.Detail})
	}

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if recordingsDir != "" {
		results = append(results, CheckDirectoryAccess("Recordings directory", recordingsDir))
		if cfg.Paths.OutputDir != "" {
			results = append(results, CheckDirectoryAccess("Output directory", cfg.OutputDirFor(recordingsDir)))
		}
	}
	if cfg.Paths.LogoDir != "" {
		results = append(results, CheckDirectoryAccess("Logo directory", cfg.Paths.LogoDir))
	}
	if cfg.Cards.FontPath != "" {
		results = append(results, CheckReadableFile("Card font", cfg.Cards.FontPath))
	}

	timeout := time.Duration(cfg.Schedule.TimeoutSeconds) * time.Second
	path, url := cfg.ScheduleSource(false)
	results = append(results, CheckSchedule(ctx, "Round robin schedule", path, url, timeout))
	if path, url := cfg.ScheduleSource(true); path != "" || url != "" {
		results = append(results, CheckSchedule(ctx, "Bracket schedule", path, url, timeout))
	}

	return results
}

// Failed counts the checks that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
