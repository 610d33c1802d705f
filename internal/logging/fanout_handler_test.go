package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var terminal, file bytes.Buffer
	h := newFanoutHandler(
		slog.NewTextHandler(&terminal, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout enabled when any handler accepts the level")
	}

	logger := slog.New(h).With("court", 1)
	logger.Debug("probing duration")
	logger.Warn("short recording")

	if strings.Contains(terminal.String(), "probing duration") {
		t.Fatalf("terminal handler should skip debug: %q", terminal.String())
	}
	if !strings.Contains(terminal.String(), "short recording") {
		t.Fatalf("terminal handler missing warn: %q", terminal.String())
	}
	for _, want := range []string{"probing duration", "short recording", "court=1"} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file handler missing %q: %q", want, file.String())
		}
	}
}
