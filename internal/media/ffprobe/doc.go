// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: the duration, capture-time, and video-parameter queries the
//     matcher and assembler depend on
//
// Duration failures always surface as errors; callers never see a zero
// duration standing in for an unreadable file.
package ffprobe
