// Package metadata reads and writes metadata.json, the per-court hand-off
// file listing each matched game, its organized part files, and optional
// manual trim offsets.
package metadata
