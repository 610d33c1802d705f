package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	courtKey contextKey = "court"
	gameKey  contextKey = "game"
)

// WithRunID annotates context with the identifier of the current CLI run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name (organize, assemble, ...).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithCourt annotates context with the court being processed.
func WithCourt(ctx context.Context, court int) context.Context {
	if court <= 0 {
		return ctx
	}
	return context.WithValue(ctx, courtKey, court)
}

// CourtFromContext returns the court number if present.
func CourtFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(courtKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithGame annotates context with a human readable game label ("Home vs Away").
func WithGame(ctx context.Context, label string) context.Context {
	if label == "" {
		return ctx
	}
	return context.WithValue(ctx, gameKey, label)
}

// GameFromContext returns the game label if present.
func GameFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(gameKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
