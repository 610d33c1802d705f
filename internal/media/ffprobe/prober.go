package ffprobe

import (
	"context"
	"fmt"
	"math"
	"time"

	"tourneyreel/internal/services"
)

// Prober answers media questions for the matcher and assembler by running ffprobe.
type Prober struct {
	Binary string
}

// NewProber returns a Prober for the given ffprobe binary.
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary}
}

// Duration returns the playable duration of path in seconds. A missing,
// unreadable, or zero-length container is an error, never a zero duration.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", path, err)
	}
	seconds := result.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration",
			fmt.Sprintf("%s reports no usable duration (%q)", path, result.Format.Duration), nil)
	}
	return seconds, nil
}

// CaptureTime returns the embedded creation time of path.
func (p *Prober) CaptureTime(ctx context.Context, path string) (time.Time, bool, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrExternalTool, "ffprobe", "creation time", path, err)
	}
	ts, ok := result.CreationTime()
	return ts, ok, nil
}

// VideoParams describes the encoding parameters a generated clip must share
// with camera footage to be stream-copy concatenated.
type VideoParams struct {
	Width      int
	Height     int
	FrameRate  string
	PixFmt     string
	VideoCodec string
	SampleRate string
	Channels   int
}

// VideoParams inspects path and extracts parameters for matching title cards.
func (p *Prober) VideoParams(ctx context.Context, path string) (VideoParams, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return VideoParams{}, services.Wrap(services.ErrExternalTool, "ffprobe", "video params", path, err)
	}
	video, ok := result.PrimaryVideo()
	if !ok {
		return VideoParams{}, services.Wrap(services.ErrValidation, "ffprobe", "video params", path+" has no video stream", nil)
	}
	params := VideoParams{
		Width:      video.Width,
		Height:     video.Height,
		FrameRate:  video.FrameRate(),
		PixFmt:     video.PixFmt,
		VideoCodec: video.CodecName,
	}
	if audio, ok := result.PrimaryAudio(); ok {
		params.SampleRate = audio.SampleRate
		params.Channels = audio.Channels
	}
	return params, nil
}
