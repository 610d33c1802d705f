// Package services defines shared utilities consumed by the pipeline stages
// and their external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, courts, and game labels
//     for logging.
//   - Structured error markers plus the Wrap helper, so failures from ffmpeg,
//     schedule parsing, or trim validation classify consistently and map to
//     stable CLI exit codes.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
