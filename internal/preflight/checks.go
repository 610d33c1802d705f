package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"tourneyreel/internal/config"
	"tourneyreel/internal/deps"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
)

// CheckSchedule verifies that a schedule export can be fetched. It makes a
// single attempt with the configured timeout.
func CheckSchedule(ctx context.Context, name, path, url string, timeout time.Duration) Result {
	if strings.TrimSpace(path) == "" && strings.TrimSpace(url) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	src, err := schedule.NewSource(path, url, timeout)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return Result{Name: name, Detail: summarizeFetchError(err)}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Result{Name: name, Detail: "export is empty"}
	}
	where := path
	if strings.TrimSpace(where) == "" {
		where = "remote export"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", where, len(data))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableFile verifies that an optional asset such as a card font or
// banner image exists and can be read.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: unreadable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the ffmpeg and ffprobe binaries for the given
// config, including their reported versions.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckVersions(ctx, deps.Requirements(cfg))
}

func summarizeFetchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "fetch timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "fetch timed out (host unreachable)"
	}
	if errors.Is(err, services.ErrNotFound) {
		return "export not found"
	}
	return err.Error()
}
