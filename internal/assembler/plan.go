package assembler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tourneyreel/internal/media/ffprobe"
	"tourneyreel/internal/metadata"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

// SegmentKind identifies the role of a segment in the final video.
type SegmentKind string

const (
	SegmentIntro SegmentKind = "intro"
	SegmentMain  SegmentKind = "main"
	SegmentOutro SegmentKind = "outro"
)

// Segment is one piece of the output timeline. Main segments reference a
// window [Start, End) of Source; card segments have no source.
type Segment struct {
	Kind           SegmentKind
	Source         string
	Start          float64
	End            float64
	Duration       float64
	SourceDuration float64
}

// NeedsTrim reports whether the segment covers less than its whole source.
func (s Segment) NeedsTrim() bool {
	return s.Kind == SegmentMain && (s.Start > 0 || s.End < s.SourceDuration)
}

// Plan is the ordered, gapless timeline for one output video.
type Plan struct {
	Game     schedule.Game
	Title    string
	Segments []Segment
	Output   string
}

// MainDuration sums the game footage segments.
func (p Plan) MainDuration() float64 {
	var total float64
	for _, s := range p.Segments {
		if s.Kind == SegmentMain {
			total += s.Duration
		}
	}
	return total
}

// TotalDuration sums every segment.
func (p Plan) TotalDuration() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Duration
	}
	return total
}

// MainSegments returns the footage segments in order.
func (p Plan) MainSegments() []Segment {
	out := make([]Segment, 0, len(p.Segments))
	for _, s := range p.Segments {
		if s.Kind == SegmentMain {
			out = append(out, s)
		}
	}
	return out
}

// Prober is the media query surface the assembler needs.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	VideoParams(ctx context.Context, path string) (ffprobe.VideoParams, error)
}

// PlanOptions control card lengths and where outputs land.
type PlanOptions struct {
	IntroSeconds float64
	OutroSeconds float64
	// OutputDir is the directory that receives final/<name>.mp4.
	OutputDir string
	// Court labels games whose metadata has no court.
	Court string
}

// BuildPlan validates entry's trims against the probed source durations and
// lays out intro, footage, and outro. It is the only way to obtain a Plan,
// so an out-of-range trim never reaches the trimmer.
func BuildPlan(ctx context.Context, entry metadata.Entry, prober Prober, opts PlanOptions) (Plan, error) {
	if err := entry.Validate(); err != nil {
		return Plan{}, err
	}
	game := entry.Game()
	if game.Court == "" {
		game.Court = opts.Court
	}

	durations := make([]float64, len(entry.VideoPath))
	for i, path := range entry.VideoPath {
		seconds, err := prober.Duration(ctx, path)
		if err != nil {
			return Plan{}, err
		}
		durations[i] = seconds
	}

	first, last := 0, len(durations)-1
	if entry.TrimTime >= durations[first] {
		return Plan{}, trimError(entry, "trim_time", entry.TrimTime, entry.VideoPath[first], durations[first])
	}
	if entry.EndTrimTime >= durations[last] {
		return Plan{}, trimError(entry, "end_trim_time", entry.EndTrimTime, entry.VideoPath[last], durations[last])
	}
	if first == last && entry.TrimTime+entry.EndTrimTime >= durations[first] {
		return Plan{}, trimError(entry, "trim_time+end_trim_time", entry.TrimTime+entry.EndTrimTime, entry.VideoPath[first], durations[first])
	}

	main := make([]Segment, len(durations))
	for i, path := range entry.VideoPath {
		seg := Segment{Kind: SegmentMain, Source: path, Start: 0, End: durations[i], SourceDuration: durations[i]}
		if i == first {
			seg.Start = entry.TrimTime
		}
		if i == last {
			seg.End = durations[i] - entry.EndTrimTime
		}
		seg.Duration = seg.End - seg.Start
		main[i] = seg
	}

	plan := Plan{
		Game:   game,
		Title:  Title(game),
		Output: OutputPath(opts.OutputDir, game),
	}
	plan.Segments = withCards(main, opts.IntroSeconds, opts.OutroSeconds)
	return plan, nil
}

func withCards(main []Segment, intro, outro float64) []Segment {
	segments := make([]Segment, 0, len(main)+2)
	if intro > 0 {
		segments = append(segments, Segment{Kind: SegmentIntro, Duration: intro})
	}
	segments = append(segments, main...)
	if outro > 0 {
		segments = append(segments, Segment{Kind: SegmentOutro, Duration: outro})
	}
	return segments
}

func trimError(entry metadata.Entry, field string, value float64, path string, duration float64) error {
	return services.Wrap(services.ErrTrimOutOfRange, "assembler", "plan",
		fmt.Sprintf("%s: %s %.3fs does not fit %s (%.3fs)", entry.Label(), field, value, filepath.Base(path), duration), nil)
}

// Title renders the card heading, "Round 2: Court 1" for round-robin games
// and "Finals Championship: Court 2" for bracket games.
func Title(game schedule.Game) string {
	round := strings.TrimSpace(game.Round)
	if game.Bracket {
		if sub := strings.TrimSpace(game.Subround); sub != "" {
			round += " " + textutil.TitleCase(sub)
		}
	} else {
		round = "Round " + round
	}
	if game.Court == "" {
		return round
	}
	return round + ": " + game.Court
}

// OutputPath returns <dir>/final/<Title>: <Home> vs <Away>.mp4.
func OutputPath(dir string, game schedule.Game) string {
	name := textutil.SanitizeFileName(fmt.Sprintf("%s: %s.mp4", Title(game), game.Label()))
	return filepath.Join(dir, "final", name)
}
