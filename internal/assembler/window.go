package assembler

import (
	"context"
	"fmt"
	"math"

	"tourneyreel/internal/recording"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
)

// DefaultWindowSeconds is the length of a playoff round when none is given.
const DefaultWindowSeconds = 1800

// WindowRequest selects a fixed-length stretch of continuous footage, used
// for playoff rounds that were recorded without stopping the camera.
type WindowRequest struct {
	Game         schedule.Game
	StartFile    string
	StartSeconds float64
	Length       float64
	WithCards    bool
}

// PlanWindow starts StartSeconds into StartFile and takes files in capture
// order until Length seconds are covered or the footage runs out.
func PlanWindow(ctx context.Context, files []recording.File, req WindowRequest, prober Prober, opts PlanOptions) (Plan, error) {
	length := req.Length
	if length <= 0 {
		length = DefaultWindowSeconds
	}
	if req.StartSeconds < 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "assembler", "plan window", "start seconds must not be negative", nil)
	}
	start := -1
	for i, f := range files {
		if f.Name == req.StartFile {
			start = i
			break
		}
	}
	if start < 0 {
		return Plan{}, services.Wrap(services.ErrNotFound, "assembler", "plan window", req.StartFile, nil)
	}

	var main []Segment
	covered := 0.0
	offset := req.StartSeconds
	for i := start; i < len(files) && covered < length; i++ {
		duration, err := prober.Duration(ctx, files[i].Path)
		if err != nil {
			return Plan{}, err
		}
		if i == start && offset >= duration {
			return Plan{}, services.Wrap(services.ErrTrimOutOfRange, "assembler", "plan window",
				fmt.Sprintf("start %.3fs is past the end of %s (%.3fs)", offset, files[i].Name, duration), nil)
		}
		take := math.Min(duration-offset, length-covered)
		seg := Segment{
			Kind:           SegmentMain,
			Source:         files[i].Path,
			Start:          offset,
			End:            offset + take,
			Duration:       take,
			SourceDuration: duration,
		}
		main = append(main, seg)
		covered += take
		offset = 0
	}

	game := req.Game
	if game.Court == "" {
		game.Court = opts.Court
	}
	plan := Plan{Game: game, Title: Title(game), Output: OutputPath(opts.OutputDir, game)}
	if req.WithCards {
		plan.Segments = withCards(main, opts.IntroSeconds, opts.OutroSeconds)
	} else {
		plan.Segments = main
	}
	return plan, nil
}
