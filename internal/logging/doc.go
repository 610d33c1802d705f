// Package logging assembles structured slog loggers for the tourneyreel CLI.
//
// It owns the console and JSON handlers, level parsing, the optional run log
// file under the configured log directory, and context-aware helpers that tag
// lines with the run ID, stage, court, and game being processed. Console output
// is colourised only when the destination is a terminal.
//
// Prefer these constructors over hand-rolled slog setup so every stage emits
// lines with the same shape.
package logging
