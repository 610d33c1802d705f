package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tourneyreel/internal/scratch"
	"tourneyreel/internal/services"
)

// Trim stream-copies src between start and end seconds into dst.
// A negative end keeps everything after start.
func (r *Runner) Trim(ctx context.Context, src string, start, end float64, dst string) error {
	if start < 0 || (end >= 0 && end <= start) {
		return services.Wrap(services.ErrTrimOutOfRange, "ffmpeg", "trim",
			fmt.Sprintf("invalid window %s-%s for %s", FormatSeconds(start), FormatSeconds(end), filepath.Base(src)), nil)
	}
	args := []string{"-ss", FormatSeconds(start)}
	if end >= 0 {
		args = append(args, "-to", FormatSeconds(end))
	}
	args = append(args,
		"-i", src,
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dst,
	)
	if err := r.invoke(ctx, "trim", args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "trim", filepath.Base(src), err)
	}
	return nil
}

// Concat joins sources in order into dst with the concat demuxer. Every
// source must share codecs and parameters; nothing is re-encoded.
func (r *Runner) Concat(ctx context.Context, sources []string, dst string) error {
	if len(sources) == 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "concat", "no sources", nil)
	}
	list, err := os.CreateTemp(filepath.Dir(dst), scratch.ConcatPrefix+"*.txt")
	if err != nil {
		return services.Wrap(services.ErrTransient, "ffmpeg", "concat", "create list file", err)
	}
	listPath := list.Name()
	defer os.Remove(listPath)

	var b strings.Builder
	for _, source := range sources {
		abs, err := filepath.Abs(source)
		if err != nil {
			_ = list.Close()
			return services.Wrap(services.ErrValidation, "ffmpeg", "concat", source, err)
		}
		b.WriteString("file ")
		b.WriteString(quoteConcatPath(abs))
		b.WriteByte('\n')
	}
	if _, err := list.WriteString(b.String()); err != nil {
		_ = list.Close()
		return services.Wrap(services.ErrTransient, "ffmpeg", "concat", "write list file", err)
	}
	if err := list.Close(); err != nil {
		return services.Wrap(services.ErrTransient, "ffmpeg", "concat", "close list file", err)
	}

	if err := r.invoke(ctx, "concat", "-f", "concat", "-safe", "0", "-i", listPath, "-map", "0", "-c", "copy", dst); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "concat", filepath.Base(dst), err)
	}
	return nil
}

// quoteConcatPath escapes a path for a concat demuxer list entry.
func quoteConcatPath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

// Snippet stream-copies duration seconds of src starting at start into dst.
func (r *Runner) Snippet(ctx context.Context, src string, start, duration float64, dst string) error {
	if start < 0 || duration <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "snippet",
			fmt.Sprintf("invalid snippet start=%s duration=%s", FormatSeconds(start), FormatSeconds(duration)), nil)
	}
	args := []string{
		"-ss", FormatSeconds(start),
		"-i", src,
		"-t", FormatSeconds(duration),
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dst,
	}
	if err := r.invoke(ctx, "snippet", args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "snippet", filepath.Base(src), err)
	}
	return nil
}

// ParseTimestamp converts "SS", "MM:SS", or "HH:MM:SS" (seconds may carry a
// fraction) into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, services.Wrap(services.ErrValidation, "ffmpeg", "parse timestamp", "empty timestamp", nil)
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, services.Wrap(services.ErrValidation, "ffmpeg", "parse timestamp", fmt.Sprintf("%q has too many fields", value), nil)
	}
	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		var n float64
		var err error
		if last {
			n, err = strconv.ParseFloat(part, 64)
		} else {
			var whole int
			whole, err = strconv.Atoi(part)
			n = float64(whole)
		}
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, services.Wrap(services.ErrValidation, "ffmpeg", "parse timestamp", fmt.Sprintf("%q is not a timestamp", value), nil)
		}
		total = total*60 + n
	}
	return total, nil
}
