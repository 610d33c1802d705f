package organize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tourneyreel/internal/config"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/metadata"
	"tourneyreel/internal/organize"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
	"tourneyreel/internal/testsupport"
)

const courtSchedule = `Round #,Start Time,Court 1,Court 2
1,9:00 AM,Sky Dogs,Plank
,,Huck Norris,Kids Next Door
,,ref,ref
2,9:40 AM,Plank,Sky Dogs
,,Totally Spies,Huck Norris
,,ref,ref
3,10:20 AM,Alpha,Beta
,,Gamma,Delta
,,ref,ref
`

type fakeProber struct {
	durations map[string]float64
}

func (p fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if d, ok := p.durations[filepath.Base(path)]; ok {
		return d, nil
	}
	return 1800, nil
}

func (p fakeProber) CaptureTime(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func newConfig(t *testing.T, opts ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithSchedule(courtSchedule, false)}, opts...)...)
	cfg.Schedule.Courts = 2
	return cfg
}

func TestRunCopiesPartsAndWritesMetadata(t *testing.T) {
	cfg := newConfig(t, testsupport.WithMissedIndices("1", 1))
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4", "GX010002.MP4", "GX020002.MP4", "GX010003.MP4")

	org := organize.New(cfg, fakeProber{durations: map[string]float64{"GX010003.MP4": 20}}, logging.NewNop())
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	outDir := filepath.Join(dir, "processed_videos")
	if report.OutputDir != outDir {
		t.Fatalf("output dir = %q, want %q", report.OutputDir, outDir)
	}
	if report.Copied != 3 || report.Unchanged != 0 {
		t.Fatalf("copied=%d unchanged=%d, want 3/0", report.Copied, report.Unchanged)
	}
	if len(report.Match.Dropped) != 1 {
		t.Fatalf("expected the short trailing clip to be dropped, got %#v", report.Match.Dropped)
	}

	entries, err := metadata.Read(report.MetadataPath)
	if err != nil {
		t.Fatalf("metadata.Read: %v", err)
	}
	got := make([][]string, len(entries))
	for i, e := range entries {
		got[i] = append([]string{e.Label()}, e.VideoPath...)
	}
	want := [][]string{
		{"Sky Dogs vs Huck Norris", filepath.Join(outDir, "sky_dogs_huck_norris_round_robin_round_1_part_1.mp4")},
		{"Alpha vs Gamma",
			filepath.Join(outDir, "alpha_gamma_round_robin_round_3_part_1.mp4"),
			filepath.Join(outDir, "alpha_gamma_round_robin_round_3_part_2.mp4"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
	}
	for _, e := range entries {
		for _, p := range e.VideoPath {
			if _, err := os.Stat(p); err != nil {
				t.Fatalf("expected part %s: %v", p, err)
			}
		}
	}

	again, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1})
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if again.Copied != 0 || again.Unchanged != 3 {
		t.Fatalf("rerun should reuse parts, copied=%d unchanged=%d", again.Copied, again.Unchanged)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := newConfig(t)
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4", "GX010002.MP4", "GX010003.MP4")

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1, DryRun: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Games) != 3 || len(report.Match.Unrecorded) != 0 {
		t.Fatalf("unexpected plan: %#v", report)
	}
	if _, err := os.Stat(report.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create %s (err=%v)", report.OutputDir, err)
	}
}

func TestRunReportsUndeclaredUnrecordedGames(t *testing.T) {
	cfg := newConfig(t)
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4", "GX010002.MP4")

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1})
	if !errors.Is(err, services.ErrMisaligned) || services.ExitCode(err) != 3 {
		t.Fatalf("expected ErrMisaligned with exit 3, got %v", err)
	}
	if diff := cmp.Diff([]int{2}, report.Match.Unrecorded); diff != "" {
		t.Fatalf("unexpected unrecorded indices (-want +got):\n%s", diff)
	}
	entries, err := metadata.Read(report.MetadataPath)
	if err != nil {
		t.Fatalf("metadata.Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected metadata for the two matched games, got %d", len(entries))
	}

	declared := newConfig(t, testsupport.WithMissedIndices("1", 2))
	if _, err := organize.New(declared, fakeProber{}, logging.NewNop()).Run(context.Background(), organize.Request{Dir: dir, Court: 1}); err != nil {
		t.Fatalf("declared miss should resolve the gap, got %v", err)
	}
}

func TestRunReportsSurplusAfterWritingMetadata(t *testing.T) {
	cfg := newConfig(t)
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4", "GX010002.MP4", "GX010003.MP4", "GX010004.MP4")

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1})
	if !errors.Is(err, services.ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
	if services.ExitCode(err) != 3 {
		t.Fatalf("exit code = %d, want 3", services.ExitCode(err))
	}
	if len(report.Match.Surplus) != 1 {
		t.Fatalf("expected one surplus group, got %d", len(report.Match.Surplus))
	}
	entries, err := metadata.Read(report.MetadataPath)
	if err != nil {
		t.Fatalf("metadata.Read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected metadata for the three matched games, got %d", len(entries))
	}
}

func TestRunRequestOverridesMissedIndices(t *testing.T) {
	cfg := newConfig(t, testsupport.WithMissedIndices("1", 0))
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4", "GX010002.MP4", "GX010003.MP4")

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1, DryRun: true, MissedIndices: []int{}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Games) != 3 || report.Games[0].Index != 0 {
		t.Fatalf("empty override should clear configured misses: %#v", report.Games)
	}
}

func TestRunUsesInjectedSource(t *testing.T) {
	cfg := newConfig(t)
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4")
	other := filepath.Join(t.TempDir(), "other.csv")
	if err := os.WriteFile(other, []byte("Round #,Start Time,Court 1,Court 2\n1,9:00,Owls,Hawks\n,,Crows,Doves\n,,r,r\n"), 0o644); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	org.WithSource(schedule.FileSource{Path: other})
	report, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1, DryRun: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Games) != 1 || report.Games[0].Game.Label() != "Owls vs Crows" {
		t.Fatalf("unexpected games: %#v", report.Games)
	}
}

func TestRunRejectsLockedDirectory(t *testing.T) {
	cfg := newConfig(t)
	dir := t.TempDir()
	testsupport.WriteRecordings(t, dir, "GX010001.MP4")

	held, err := organize.LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	defer held.Unlock()

	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	if _, err := org.Run(context.Background(), organize.Request{Dir: dir, Court: 1}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestRunRejectsUnknownCourt(t *testing.T) {
	cfg := newConfig(t)
	org := organize.New(cfg, fakeProber{}, logging.NewNop())
	if _, err := org.Run(context.Background(), organize.Request{Dir: t.TempDir(), Court: 5}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPartName(t *testing.T) {
	tests := []struct {
		game schedule.Game
		n    int
		ext  string
		want string
	}{
		{schedule.Game{HomeTeam: "Sky Dogs", AwayTeam: "O'Neil's Crew", Round: "2"}, 1, ".MP4", "sky_dogs_oneils_crew_round_robin_round_2_part_1.mp4"},
		{schedule.Game{HomeTeam: "Plank", AwayTeam: "Sky Dogs", Round: "Quarters", Bracket: true}, 3, ".mp4", "plank_sky_dogs_bracket_round_quarters_part_3.mp4"},
	}
	for _, tt := range tests {
		if got := organize.PartName(tt.game, tt.n, tt.ext); got != tt.want {
			t.Fatalf("PartName(%v) = %q, want %q", tt.game, got, tt.want)
		}
	}
}
