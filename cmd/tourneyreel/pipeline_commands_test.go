package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tourneyreel/internal/metadata"
	"tourneyreel/internal/services"
	"tourneyreel/internal/testsupport"
)

func TestOrganizePlanAssembleStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4", "GX010002.MP4", "GX020002.MP4")

	out, _, err := runCLI(t, []string{"organize", env.recordings, "--court", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Sky Dogs vs Huck Norris")
	requireContains(t, out, "Plank vs Totally Spies")

	outDir := filepath.Join(env.recordings, "processed_videos")
	entries, err := metadata.Read(filepath.Join(outDir, metadata.FileName))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if len(entries) != 2 || len(entries[1].VideoPath) != 2 {
		t.Fatalf("unexpected metadata: %#v", entries)
	}

	out, _, err = runCLI(t, []string{"--json", "plan", env.recordings}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var plans []planView
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("decode plan output: %v\n%s", err, out)
	}
	if len(plans) != 2 {
		t.Fatalf("expected two plans, got %d", len(plans))
	}
	if plans[0].Title != "Round 1: Court 1" || plans[0].TotalSeconds != 1805 {
		t.Fatalf("unexpected first plan: %#v", plans[0])
	}
	kinds := make([]string, 0, len(plans[1].Segments))
	for _, seg := range plans[1].Segments {
		kinds = append(kinds, seg.Kind)
	}
	if got := len(kinds); got != 4 || kinds[0] != "intro" || kinds[3] != "outro" {
		t.Fatalf("unexpected segments: %v", kinds)
	}

	out, _, err = runCLI(t, []string{"assemble", env.recordings}, env.configPath)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	requireContains(t, out, "2/2 assembled")
	final := filepath.Join(outDir, "final", "Round 1: Court 1: Sky Dogs vs Huck Norris.mp4")
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("expected output %s: %v", final, err)
	}

	out, _, err = runCLI(t, []string{"--json", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var attempts []attemptView
	if err := json.Unmarshal([]byte(out), &attempts); err != nil {
		t.Fatalf("decode status output: %v\n%s", err, out)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected two ledger entries, got %d", len(attempts))
	}
	for _, a := range attempts {
		if a.Status != "done" || a.Attempts != 1 {
			t.Fatalf("unexpected ledger entry: %#v", a)
		}
	}

	out, _, err = runCLI(t, []string{"assemble", env.recordings}, env.configPath)
	if err != nil {
		t.Fatalf("second assemble: %v", err)
	}
	requireContains(t, out, "0/2 assembled")
	requireContains(t, out, "skipped")

	out, _, err = runCLI(t, []string{"assemble", env.recordings, "--force", "--game", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("forced assemble: %v", err)
	}
	requireContains(t, out, "1/1 assembled")
}

func TestPlanRejectsTrimOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4", "GX010002.MP4")
	if _, _, err := runCLI(t, []string{"organize", env.recordings, "--court", "1"}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}

	path := filepath.Join(env.recordings, "processed_videos", metadata.FileName)
	entries, err := metadata.Read(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	entries[0].TrimTime = 5000
	if err := metadata.Write(path, entries); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	_, _, err = runCLI(t, []string{"plan", env.recordings}, env.configPath)
	if !errors.Is(err, services.ErrTrimOutOfRange) || services.ExitCode(err) != 2 {
		t.Fatalf("expected trim out of range, got %v", err)
	}
}

func TestOrganizeSurplusExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4", "GX010002.MP4", "GX010003.MP4")

	out, _, err := runCLI(t, []string{"organize", env.recordings, "--court", "1"}, env.configPath)
	if !errors.Is(err, services.ErrMisaligned) || services.ExitCode(err) != 3 {
		t.Fatalf("expected misaligned exit 3, got %v", err)
	}
	requireContains(t, out, "Surplus recordings: GX010003.MP4")
}

func TestOrganizeUnrecordedGameExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4")

	out, _, err := runCLI(t, []string{"organize", env.recordings, "--court", "1"}, env.configPath)
	if !errors.Is(err, services.ErrMisaligned) || services.ExitCode(err) != 3 {
		t.Fatalf("expected misaligned exit 3, got %v", err)
	}
	requireContains(t, out, "Unrecorded schedule entries: 1")
}

func TestOrganizeDryRunJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4", "GX010002.MP4")

	out, _, err := runCLI(t, []string{"--json", "organize", env.recordings, "--court", "2", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	var view organizeView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !view.DryRun || len(view.Games) != 2 || view.Games[0].Game != "Plank vs Kids Next Door" {
		t.Fatalf("unexpected view: %#v", view)
	}
	if _, err := os.Stat(view.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote %s", view.OutputDir)
	}
}

func TestConcatAndSnippet(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRecordings(t, env.recordings, "GX010001.MP4", "GX020001.MP4", "GX030001.MP4")

	out, _, err := runCLI(t, []string{"concat", env.recordings, "GX010001.MP4", "GX020001.MP4", "warmup"}, env.configPath)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	requireContains(t, out, "Joined 2 recording(s)")
	if _, err := os.Stat(filepath.Join(env.recordings, "warmup.mp4")); err != nil {
		t.Fatalf("expected joined output: %v", err)
	}

	src := filepath.Join(env.recordings, "GX010001.MP4")
	out, _, err = runCLI(t, []string{"snippet", src, "1:05", "big catch"}, env.configPath)
	if err != nil {
		t.Fatalf("snippet: %v", err)
	}
	requireContains(t, out, "big catch.mp4")

	_, _, err = runCLI(t, []string{"snippet", src, "1:75", "bad"}, env.configPath)
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected validation exit code for bad timestamp, got %v", err)
	}
}

func TestWatermarkConvertsJPEGNames(t *testing.T) {
	env := setupCLITestEnv(t)
	photos := filepath.Join(env.baseDir, "photos")
	testsupport.WriteFile(t, filepath.Join(photos, "team.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(photos, "notes.txt"), 10)
	logo := filepath.Join(env.baseDir, "logo.png")
	testsupport.WriteFile(t, logo, 10)

	out, _, err := runCLI(t, []string{"watermark", photos, "--logo", logo}, env.configPath)
	if err != nil {
		t.Fatalf("watermark: %v", err)
	}
	requireContains(t, out, "Watermarked 1 image(s)")
	if _, err := os.Stat(filepath.Join(photos, "watermarked_images", "watermarked_team.png")); err != nil {
		t.Fatalf("expected watermarked png: %v", err)
	}
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor", "--dir", env.recordings}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "7.0-test")
	requireContains(t, out, "Round robin schedule")
}
