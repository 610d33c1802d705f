package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int               `json:"index"`
	CodecName     string            `json:"codec_name"`
	CodecType     string            `json:"codec_type"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	PixFmt        string            `json:"pix_fmt"`
	RFrameRate    string            `json:"r_frame_rate"`
	AvgFrameRate  string            `json:"avg_frame_rate"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Duration      string            `json:"duration"`
	Tags          map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}
	return result, nil
}

// DurationSeconds returns the container duration in seconds, 0 when absent,
// or NaN when the value is not a number.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// CreationTime returns the container creation_time tag, which cameras stamp
// at capture. ok is false when the tag is missing or unparseable.
func (r Result) CreationTime() (time.Time, bool) {
	raw := lookupTag(r.Format.Tags, "creation_time")
	if raw == "" {
		for _, stream := range r.Streams {
			if raw = lookupTag(stream.Tags, "creation_time"); raw != "" {
				break
			}
		}
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000000Z", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// PrimaryVideo returns the first video stream.
func (r Result) PrimaryVideo() (Stream, bool) {
	return r.firstOfType("video")
}

// PrimaryAudio returns the first audio stream.
func (r Result) PrimaryAudio() (Stream, bool) {
	return r.firstOfType("audio")
}

func (r Result) firstOfType(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			return stream, true
		}
	}
	return Stream{}, false
}

// FrameRate returns the stream frame rate as an ffmpeg rational string,
// preferring r_frame_rate over avg_frame_rate.
func (s Stream) FrameRate() string {
	for _, candidate := range []string{s.RFrameRate, s.AvgFrameRate} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && candidate != "0/0" {
			return candidate
		}
	}
	return ""
}

func lookupTag(tags map[string]string, key string) string {
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
