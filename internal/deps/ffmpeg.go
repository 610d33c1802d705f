package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"tourneyreel/internal/config"
)

const versionTimeout = 5 * time.Second

// Requirements lists the external binaries the configured pipeline executes.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg, ffprobe := "ffmpeg", "ffprobe"
	if cfg != nil {
		ffmpeg = cfg.Assembly.FFmpegBinary
		ffprobe = cfg.Assembly.FFprobeBinary
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Trims, joins, and renders title cards"},
		{Name: "FFprobe", Command: ffprobe, Description: "Reads recording durations and stream parameters"},
	}
}

// CheckVersions resolves each requirement like CheckBinaries and, for the
// available ones, records the version banner in Detail (the resolved path
// when the banner is unreadable).
func CheckVersions(ctx context.Context, requirements []Requirement) []Status {
	results := CheckBinaries(requirements)
	for i := range results {
		if !results[i].Available {
			continue
		}
		results[i].Detail = results[i].Path
		if version := Version(ctx, results[i].Path); version != "" {
			results[i].Detail = version
		}
	}
	return results
}

// Version returns the version token from "<command> -version", for example
// "6.1.1" from "ffmpeg version 6.1.1 Copyright ...". It returns "" when the
// banner cannot be read.
func Version(ctx context.Context, command string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, command, "-version").Output() //nolint:gosec
	if err != nil {
		return ""
	}
	return parseVersion(out)
}

func parseVersion(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return ""
	}
	fields := strings.Fields(scanner.Text())
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "version" {
			return fields[i+1]
		}
	}
	return ""
}
