package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tourneyreel/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Assembly.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe, got %#v", reqs)
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" || reqs[1].Command != "ffprobe" {
		t.Fatalf("unexpected commands: %#v", reqs)
	}
}

func TestCheckVersionsReadsBanner(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	script := []byte("#!/bin/sh\necho 'ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers'\n")
	if err := os.WriteFile(stub, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := CheckVersions(context.Background(), []Requirement{{Name: "FFmpeg", Command: stub}})
	if !results[0].Available || results[0].Detail != "6.1.1-3ubuntu5" {
		t.Fatalf("unexpected status: %#v", results[0])
	}
}

func TestParseVersion(t *testing.T) {
	tests := map[string]string{
		"ffprobe version n7.0 Copyright":  "n7.0",
		"something else entirely":         "",
		"":                                "",
		"ffmpeg version":                  "",
	}
	for in, want := range tests {
		if got := parseVersion([]byte(in)); got != want {
			t.Fatalf("parseVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
