package config

// Capture order modes for recording listings.
const (
	CaptureOrderModTime      = "mtime"
	CaptureOrderCreationTime = "creation_time"
)

const (
	defaultLogDir              = "~/.local/share/tourneyreel/logs"
	defaultStateDir            = "~/.local/share/tourneyreel"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultCourts              = 3
	defaultScheduleTimeout     = 30
	defaultExtension           = "mp4"
	defaultMinDurationSeconds  = 300
	defaultCaptureOrder        = CaptureOrderModTime
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultParallelism         = 2
	defaultIntroSeconds        = 15
	defaultOutroSeconds        = 5
	defaultPlayoffRoundSeconds = 1800
	defaultSnippetSeconds      = 10
	defaultCardFontColor       = "white"
	defaultCardBackground      = "black"
	defaultCardLogoWidth       = 180
	envScheduleURL             = "TOURNEYREEL_SCHEDULE_URL"
	envBracketURL              = "TOURNEYREEL_BRACKET_URL"
	envCardBanner              = "TOURNEYREEL_BANNER"
)

// DefaultRoundOrder is the playoff bracket progression used to order games.
var DefaultRoundOrder = []string{"Round 1", "Quarters", "Semis", "Finals"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Schedule: Schedule{
			Courts:         defaultCourts,
			RoundOrder:     append([]string(nil), DefaultRoundOrder...),
			TimeoutSeconds: defaultScheduleTimeout,
		},
		Matcher: Matcher{
			Extension:          defaultExtension,
			MinDurationSeconds: defaultMinDurationSeconds,
			CaptureOrder:       defaultCaptureOrder,
		},
		Assembly: Assembly{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			Parallelism:         defaultParallelism,
			IntroSeconds:        defaultIntroSeconds,
			OutroSeconds:        defaultOutroSeconds,
			PlayoffRoundSeconds: defaultPlayoffRoundSeconds,
			SnippetSeconds:      defaultSnippetSeconds,
		},
		Cards: Cards{
			FontColor:  defaultCardFontColor,
			Background: defaultCardBackground,
			LogoWidth:  defaultCardLogoWidth,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
