package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tourneyreel/internal/media/ffprobe"
	"tourneyreel/internal/services"
)

// CardSpec describes a static title card.
type CardSpec struct {
	Title     string
	HomeTeam  string
	AwayTeam  string
	HomeScore string
	AwayScore string
	HomeLogo  string
	AwayLogo  string
	Banner    string
	Duration  float64
}

// CardStyle carries the look shared by every card in a run.
type CardStyle struct {
	FontPath   string
	FontColor  string
	Background string
	LogoWidth  int
}

// RenderCard encodes spec into dst using params so the card can be
// stream-copy concatenated with camera footage.
func (r *Runner) RenderCard(ctx context.Context, spec CardSpec, style CardStyle, params ffprobe.VideoParams, dst string) error {
	if spec.Duration <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "render card", "card duration must be positive", nil)
	}
	if params.Width <= 0 || params.Height <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "render card", "source dimensions unknown", nil)
	}
	args := cardArgs(spec, style, params, dst)
	if err := r.invoke(ctx, "render card", args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "render card", filepath.Base(dst), err)
	}
	return nil
}

func cardArgs(spec CardSpec, style CardStyle, params ffprobe.VideoParams, dst string) []string {
	// Logo inputs and their overlay indexes must agree.
	spec.HomeLogo = strings.TrimSpace(spec.HomeLogo)
	spec.AwayLogo = strings.TrimSpace(spec.AwayLogo)
	rate := params.FrameRate
	if rate == "" {
		rate = "30"
	}
	background := style.Background
	if background == "" {
		background = "black"
	}
	sampleRate := params.SampleRate
	if sampleRate == "" {
		sampleRate = "48000"
	}
	layout := "stereo"
	if params.Channels == 1 {
		layout = "mono"
	}
	duration := FormatSeconds(spec.Duration)

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%s:d=%s", background, params.Width, params.Height, rate, duration),
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%s:cl=%s", sampleRate, layout),
	}
	logos := make([]string, 0, 2)
	for _, logo := range []string{spec.HomeLogo, spec.AwayLogo} {
		if logo != "" {
			args = append(args, "-loop", "1", "-i", logo)
			logos = append(logos, logo)
		}
	}
	args = append(args,
		"-filter_complex", cardFilter(spec, style, params, len(logos), spec.HomeLogo != "", spec.AwayLogo != ""),
		"-map", "[v]",
		"-map", "1:a",
		"-t", duration,
	)
	codec := videoEncoder(params.VideoCodec)
	args = append(args, "-c:v", codec)
	if params.PixFmt != "" {
		args = append(args, "-pix_fmt", params.PixFmt)
	}
	args = append(args,
		"-r", rate,
		"-c:a", "aac",
		"-ar", sampleRate,
		"-ac", strconv.Itoa(max(params.Channels, 1)),
		"-shortest",
		dst,
	)
	return args
}

func cardFilter(spec CardSpec, style CardStyle, params ffprobe.VideoParams, logoCount int, hasHome, hasAway bool) string {
	logoWidth := style.LogoWidth
	if logoWidth <= 0 {
		logoWidth = 180
	}
	color := style.FontColor
	if color == "" {
		color = "white"
	}
	font := ""
	if style.FontPath != "" {
		font = "fontfile=" + escapeFilterValue(style.FontPath) + ":"
	}
	big := max(params.Height/14, 24)
	small := max(params.Height/24, 16)

	text := func(value string, size int, x, y string) string {
		return fmt.Sprintf("drawtext=%stext='%s':fontcolor=%s:fontsize=%d:x=%s:y=%s",
			font, escapeDrawText(value), color, size, x, y)
	}

	filters := []string{"[0:v]format=yuv420p"}
	if spec.Banner != "" {
		filters = append(filters, text(spec.Banner, small, "(w-text_w)/2", "h*0.10"))
	}
	if spec.Title != "" {
		filters = append(filters, text(spec.Title, small, "(w-text_w)/2", "h*0.20"))
	}
	filters = append(filters,
		text(spec.HomeTeam, big, "w*0.25-text_w/2", "h*0.62"),
		text("vs", small, "(w-text_w)/2", "h*0.63"),
		text(spec.AwayTeam, big, "w*0.75-text_w/2", "h*0.62"),
	)
	if spec.HomeScore != "" || spec.AwayScore != "" {
		filters = append(filters,
			text(spec.HomeScore, big, "w*0.25-text_w/2", "h*0.74"),
			text(spec.AwayScore, big, "w*0.75-text_w/2", "h*0.74"),
		)
	}
	chain := strings.Join(filters, ",")
	if logoCount == 0 {
		return chain + "[v]"
	}

	parts := []string{chain + "[base]"}
	current := "base"
	input := 2
	place := func(label, x string) {
		parts = append(parts, fmt.Sprintf("[%d:v]scale=%d:-1[%s]", input, logoWidth, label))
		next := label + "_out"
		parts = append(parts, fmt.Sprintf("[%s][%s]overlay=x=%s:y=H*0.30:shortest=1[%s]", current, label, x, next))
		current = next
		input++
	}
	if hasHome {
		place("home", "W*0.25-w/2")
	}
	if hasAway {
		place("away", "W*0.75-w/2")
	}
	last := parts[len(parts)-1]
	parts[len(parts)-1] = strings.TrimSuffix(last, "["+current+"]") + "[v]"
	return strings.Join(parts, ";")
}

func videoEncoder(codec string) string {
	switch strings.ToLower(codec) {
	case "hevc", "h265":
		return "libx265"
	default:
		return "libx264"
	}
}

func escapeDrawText(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `'\''`, `:`, `\:`, `%`, `\%`)
	return replacer.Replace(value)
}

func escapeFilterValue(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return replacer.Replace(value)
}
