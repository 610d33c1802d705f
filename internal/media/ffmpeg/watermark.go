package ffmpeg

import (
	"context"
	"path/filepath"

	"tourneyreel/internal/services"
)

// watermarkFilter scales the logo to half size, applies 75% opacity, and
// pins it 10px from the bottom-right corner.
const watermarkFilter = "[1:v]scale=iw/2:ih/2,format=rgba,colorchannelmixer=aa=0.75[wm];[0:v][wm]overlay=W-w-10:H-h-10"

// Watermark overlays logo onto a still image and writes dst.
func (r *Runner) Watermark(ctx context.Context, image, logo, dst string) error {
	args := []string{
		"-i", image,
		"-i", logo,
		"-filter_complex", watermarkFilter,
		"-frames:v", "1",
		dst,
	}
	if err := r.invoke(ctx, "watermark", args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "watermark", filepath.Base(image), err)
	}
	return nil
}
