// Package ffmpeg wraps the ffmpeg invocations tourneyreel relies on: stream
// copy trims, concat-demuxer joins, static title cards encoded to match
// camera footage, highlight snippets, and still-image watermarks.
//
// Runner shells out through an injectable command runner so callers and tests
// can observe the exact argument lists without an ffmpeg binary.
package ffmpeg
