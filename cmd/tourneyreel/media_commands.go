package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tourneyreel/internal/config"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/media/ffmpeg"
	"tourneyreel/internal/recording"
	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// withVideoExt appends .mp4 unless name already carries an extension.
func withVideoExt(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".mp4"
	}
	return name
}

func newConcatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "concat <dir> <first> <last> <output>",
		Short: "Join a run of raw recordings, first through last in capture order",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerFor(cmd)
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve directory", args[0], err)
			}
			runCtx := services.WithStage(ctx.runContext(cmd), "concat")
			prober := ctx.prober()
			files, err := recording.List(runCtx, dir, recording.ListOptions{
				Extension: cfg.Matcher.Extension,
				Order:     cfg.Matcher.CaptureOrder,
				Timer:     prober,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			selected, err := recording.Range(files, args[1], args[2])
			if err != nil {
				return err
			}

			dst := filepath.Join(dir, textutil.SanitizeFileName(withVideoExt(args[3])))
			logger.Info("joining recordings",
				logging.Int("files", len(selected)),
				logging.String("first", args[1]),
				logging.String("last", args[2]),
				logging.String("output", dst),
			)
			if err := ctx.ffmpeg(cmd).Concat(runCtx, recording.Paths(selected), dst); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"output": dst, "sources": recording.Paths(selected)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Joined %d recording(s) into %s\n", len(selected), dst)
			return nil
		},
	}
}

func newSnippetCommand(ctx *commandContext) *cobra.Command {
	var duration float64

	cmd := &cobra.Command{
		Use:   "snippet <file> <start> <name>",
		Short: "Cut a short highlight clip without re-encoding",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			src, err := config.ExpandPath(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve file", args[0], err)
			}
			if _, err := os.Stat(src); err != nil {
				return services.Wrap(services.ErrNotFound, "cli", "snippet", src, err)
			}
			start, err := ffmpeg.ParseTimestamp(args[1])
			if err != nil {
				return err
			}
			if duration <= 0 {
				duration = cfg.Assembly.SnippetSeconds
			}

			dst := filepath.Join(filepath.Dir(src), textutil.SanitizeFileName(withVideoExt(args[2])))
			runCtx := services.WithStage(ctx.runContext(cmd), "snippet")
			if err := ctx.ffmpeg(cmd).Snippet(runCtx, src, start, duration, dst); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"output": dst, "start": start, "duration": duration})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s from %s)\n", dst, ffmpeg.FormatSeconds(duration)+"s", args[1])
			return nil
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Clip length in seconds (default assembly.snippet_seconds)")
	return cmd
}

func newWatermarkCommand(ctx *commandContext) *cobra.Command {
	var logo string
	var output string

	cmd := &cobra.Command{
		Use:   "watermark <dir>",
		Short: "Stamp a logo onto every PNG/JPEG image in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.loggerFor(cmd)
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve directory", args[0], err)
			}
			logoPath, err := config.ExpandPath(logo)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve logo", logo, err)
			}
			if _, err := os.Stat(logoPath); err != nil {
				return services.Wrap(services.ErrNotFound, "cli", "watermark", logoPath, err)
			}
			outDir := filepath.Join(dir, "watermarked_images")
			if strings.TrimSpace(output) != "" {
				if outDir, err = config.ExpandPath(output); err != nil {
					return services.Wrap(services.ErrValidation, "cli", "resolve output", output, err)
				}
			}

			images, err := listImages(dir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return services.Wrap(services.ErrConfiguration, "cli", "create output directory", outDir, err)
			}

			runCtx := services.WithStage(ctx.runContext(cmd), "watermark")
			runner := ctx.ffmpeg(cmd)
			written := make([]string, 0, len(images))
			for _, image := range images {
				dst := filepath.Join(outDir, watermarkedName(filepath.Base(image)))
				if err := runner.Watermark(runCtx, image, logoPath, dst); err != nil {
					return err
				}
				logger.Info("watermarked image", logging.String("image", filepath.Base(image)), logging.String("output", dst))
				written = append(written, dst)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"output_dir": outDir, "images": written})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watermarked %d image(s) into %s\n", len(written), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&logo, "logo", "", "Logo image to overlay")
	cmd.Flags().StringVar(&output, "output", "", "Output directory (default <dir>/watermarked_images)")
	_ = cmd.MarkFlagRequired("logo")
	return cmd
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "cli", "list images", dir, err)
		}
		return nil, services.Wrap(services.ErrValidation, "cli", "list images", dir, err)
	}
	var images []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}

// watermarkedName prefixes the image name and switches JPEGs to PNG so the
// overlay keeps its transparency.
func watermarkedName(name string) string {
	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		name = strings.TrimSuffix(name, ext) + ".png"
	}
	return "watermarked_" + name
}
