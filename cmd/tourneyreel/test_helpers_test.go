package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tourneyreel/internal/config"
	"tourneyreel/internal/testsupport"
)

const testSchedule = `Round #,Start Time,Court 1,Court 2
1,9:00 AM,Sky Dogs,Plank
,,Huck Norris,Kids Next Door
,,ref,ref
2,9:40 AM,Plank,Sky Dogs
,,Totally Spies,Huck Norris
,,ref,ref
`

const ffprobeStub = `#!/bin/sh
if [ "$1" = "-version" ]; then echo "ffprobe version 7.0-test"; exit 0; fi
for arg; do last="$arg"; done
case "$last" in
  *SHORT*) dur=20 ;;
  *) dur=1800 ;;
esac
cat <<JSON
{"streams":[{"codec_type":"video","codec_name":"h264","width":1920,"height":1080,"r_frame_rate":"30/1","pix_fmt":"yuv420p"},{"codec_type":"audio","sample_rate":"48000","channels":2}],"format":{"duration":"$dur"}}
JSON
`

// ffmpegStub writes a placeholder into its last argument, the output path.
const ffmpegStub = `#!/bin/sh
if [ "$1" = "-version" ]; then echo "ffmpeg version 7.0-test"; exit 0; fi
for arg; do last="$arg"; done
printf 'video' > "$last"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	recordings string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithSchedule(testSchedule, false))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TOURNEYREEL_SCHEDULE_URL", "")
	t.Setenv("TOURNEYREEL_BRACKET_URL", "")
	t.Setenv("TOURNEYREEL_BANNER", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	cfg.Assembly.FFmpegBinary = filepath.Join(binDir, "ffmpeg")
	cfg.Assembly.FFprobeBinary = filepath.Join(binDir, "ffprobe")
	for path, body := range map[string]string{cfg.Assembly.FFmpegBinary: ffmpegStub, cfg.Assembly.FFprobeBinary: ffprobeStub} {
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}

	recordings := filepath.Join(base, "recordings")
	if err := os.MkdirAll(recordings, 0o755); err != nil {
		t.Fatalf("mkdir recordings: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		recordings: recordings,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
state_dir = %q

[schedule]
path = %q
courts = 2

[assembly]
ffmpeg_binary = %q
ffprobe_binary = %q
parallelism = 2
intro_seconds = 3
outro_seconds = 2

[logging]
level = "error"
`,
		cfg.Paths.LogDir,
		cfg.Paths.StateDir,
		cfg.Schedule.Path,
		cfg.Assembly.FFmpegBinary,
		cfg.Assembly.FFprobeBinary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
