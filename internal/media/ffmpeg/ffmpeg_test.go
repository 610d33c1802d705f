package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tourneyreel/internal/media/ffprobe"
	"tourneyreel/internal/services"
)

type recordedCall struct {
	name string
	args []string
}

func newRecordingRunner(t *testing.T, fail error) (*Runner, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}
	runner := NewRunner("", nil)
	runner.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCall{name: name, args: append([]string(nil), args...)})
		return fail
	})
	return runner, calls
}

func argAfter(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func TestTrimUsesStreamCopy(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	if err := runner.Trim(context.Background(), "/in/GX010343.MP4", 50, 400, "/tmp/out.mp4"); err != nil {
		t.Fatalf("Trim returned error: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.name != "ffmpeg" {
		t.Fatalf("unexpected binary %q", call.name)
	}
	if argAfter(call.args, "-ss") != "50.000" || argAfter(call.args, "-to") != "400.000" {
		t.Fatalf("unexpected window in %v", call.args)
	}
	if argAfter(call.args, "-c") != "copy" {
		t.Fatalf("expected stream copy, got %v", call.args)
	}
	if call.args[len(call.args)-1] != "/tmp/out.mp4" {
		t.Fatalf("expected destination last, got %v", call.args)
	}
}

func TestTrimOpenEndedOmitsTo(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	if err := runner.Trim(context.Background(), "in.mp4", 12, -1, "out.mp4"); err != nil {
		t.Fatalf("Trim returned error: %v", err)
	}
	if slices.Contains((*calls)[0].args, "-to") {
		t.Fatalf("did not expect -to in %v", (*calls)[0].args)
	}
}

func TestTrimRejectsEmptyWindowWithoutRunning(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	err := runner.Trim(context.Background(), "in.mp4", 30, 10, "out.mp4")
	if !errors.Is(err, services.ErrTrimOutOfRange) {
		t.Fatalf("expected trim out of range, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("ffmpeg should not run, got %d calls", len(*calls))
	}
}

func TestTrimWrapsRunnerFailure(t *testing.T) {
	runner, _ := newRecordingRunner(t, errors.New("exit status 1"))
	err := runner.Trim(context.Background(), "in.mp4", 0, 10, "out.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestConcatWritesAndRemovesListFile(t *testing.T) {
	dir := t.TempDir()
	var listPath, listBody string
	runner := NewRunner("ffmpeg", nil)
	runner.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		listPath = argAfter(args, "-i")
		data, err := os.ReadFile(listPath)
		if err != nil {
			return err
		}
		listBody = string(data)
		if argAfter(args, "-f") != "concat" || argAfter(args, "-safe") != "0" {
			t.Fatalf("expected concat demuxer, got %v", args)
		}
		return nil
	})

	sources := []string{filepath.Join(dir, "intro.mp4"), filepath.Join(dir, "Bob's Team.mp4")}
	if err := runner.Concat(context.Background(), sources, filepath.Join(dir, "final.mp4")); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}
	want := "file '" + sources[0] + "'\nfile '" + filepath.Join(dir, `Bob'\''s Team.mp4`) + "'\n"
	if listBody != want {
		t.Fatalf("unexpected list body:\n%s\nwant:\n%s", listBody, want)
	}
	if _, err := os.Stat(listPath); !os.IsNotExist(err) {
		t.Fatalf("expected list file removed, stat err=%v", err)
	}
}

func TestConcatRemovesListFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	runner, _ := newRecordingRunner(t, errors.New("boom"))
	if err := runner.Concat(context.Background(), []string{"a.mp4"}, filepath.Join(dir, "out.mp4")); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftovers, found %d entries", len(entries))
	}
}

func TestRenderCardMatchesSourceParameters(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	spec := CardSpec{
		Title:    "Round 2: Court 1",
		HomeTeam: "Sky Dogs",
		AwayTeam: "Huck Norris",
		HomeLogo: "/logos/sky_dogs.png",
		Banner:   "Spring League",
		Duration: 15,
	}
	params := ffprobe.VideoParams{Width: 1920, Height: 1080, FrameRate: "60000/1001", PixFmt: "yuvj420p", VideoCodec: "hevc", SampleRate: "48000", Channels: 2}
	if err := runner.RenderCard(context.Background(), spec, CardStyle{LogoWidth: 180}, params, "/tmp/intro.mp4"); err != nil {
		t.Fatalf("RenderCard returned error: %v", err)
	}
	args := (*calls)[0].args
	joined := strings.Join(args, " ")
	for _, want := range []string{"s=1920x1080", "r=60000/1001", "anullsrc=r=48000:cl=stereo", "scale=180:-1", "text='Sky Dogs'", "text='Round 2\\: Court 1'"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args: %s", want, joined)
		}
	}
	if argAfter(args, "-c:v") != "libx265" || argAfter(args, "-pix_fmt") != "yuvj420p" {
		t.Fatalf("unexpected encoder settings: %v", args)
	}
	if filter := argAfter(args, "-filter_complex"); !strings.HasSuffix(filter, "[v]") {
		t.Fatalf("filter must end at [v]: %s", filter)
	}
}

func TestRenderCardIgnoresBlankLogoPaths(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	spec := CardSpec{
		HomeTeam: "Sky Dogs",
		AwayTeam: "Plank",
		HomeLogo: "   ",
		AwayLogo: " /logos/plank.png ",
		Duration: 5,
	}
	params := ffprobe.VideoParams{Width: 1280, Height: 720}
	if err := runner.RenderCard(context.Background(), spec, CardStyle{}, params, "/tmp/outro.mp4"); err != nil {
		t.Fatalf("RenderCard returned error: %v", err)
	}
	args := (*calls)[0].args
	inputs := 0
	for i, arg := range args {
		if arg == "-i" {
			inputs++
			if i+1 < len(args) && strings.TrimSpace(args[i+1]) == "" {
				t.Fatalf("blank logo passed as input: %v", args)
			}
		}
	}
	if inputs != 3 {
		t.Fatalf("expected color, audio, and one logo input, got %d: %v", inputs, args)
	}
	filter := argAfter(args, "-filter_complex")
	if !strings.Contains(filter, "[2:v]scale=180:-1[away]") || strings.Contains(filter, "[home]") || strings.Contains(filter, "[3:v]") {
		t.Fatalf("overlay indexes do not match inputs: %s", filter)
	}
}

func TestRenderCardRequiresDimensions(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	err := runner.RenderCard(context.Background(), CardSpec{Duration: 5}, CardStyle{}, ffprobe.VideoParams{}, "out.mp4")
	if !errors.Is(err, services.ErrValidation) || len(*calls) != 0 {
		t.Fatalf("expected validation error without running, got %v (%d calls)", err, len(*calls))
	}
}

func TestSnippetAndWatermark(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)
	if err := runner.Snippet(context.Background(), "game.mp4", 1833, 10, "catch.mp4"); err != nil {
		t.Fatalf("Snippet returned error: %v", err)
	}
	if err := runner.Watermark(context.Background(), "photo.jpg", "logo.png", "watermarked_photo.png"); err != nil {
		t.Fatalf("Watermark returned error: %v", err)
	}
	snippet := (*calls)[0].args
	if argAfter(snippet, "-ss") != "1833.000" || argAfter(snippet, "-t") != "10.000" {
		t.Fatalf("unexpected snippet args %v", snippet)
	}
	if !strings.Contains(argAfter((*calls)[1].args, "-filter_complex"), "colorchannelmixer=aa=0.75") {
		t.Fatalf("unexpected watermark args %v", (*calls)[1].args)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "30:33", want: 1833},
		{in: "1:02:03", want: 3723},
		{in: "45.5", want: 45.5},
		{in: "00:07.25", want: 7.25},
		{in: "1:75", wantErr: true},
		{in: "a:10", wantErr: true},
		{in: "", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimestamp(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
