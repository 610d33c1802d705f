package matcher

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"tourneyreel/internal/logging"
	"tourneyreel/internal/recording"
	"tourneyreel/internal/schedule"
)

// DefaultMinDuration is the length below which a lone recording is treated
// as a false start.
const DefaultMinDuration = 300 * time.Second

// Group is one continuous camera recording, possibly split across chapter
// files, or the two halves around a boundary marker.
type Group struct {
	Files []recording.File
}

// Names returns the file names in the group.
func (g Group) Names() []string {
	names := make([]string, len(g.Files))
	for i, f := range g.Files {
		names[i] = f.Name
	}
	return names
}

// Paths returns the file paths in the group.
func (g Group) Paths() []string {
	return recording.Paths(g.Files)
}

// MatchedGame pairs a schedule entry with the recording that covers it.
type MatchedGame struct {
	// Index is the game's position in the court schedule.
	Index int
	Game  schedule.Game
	Group Group
}

// Prober reports media durations in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Options are the operator-declared inputs for one court.
type Options struct {
	MinDuration time.Duration
	// BoundaryMarkers name files known to hold the end of one game and the
	// start of the next.
	BoundaryMarkers []string
	// MissedIndices are schedule positions that were never recorded.
	MissedIndices []int
	Logger        *slog.Logger
}

// Result is the outcome of matching one court.
type Result struct {
	Games []MatchedGame
	// Surplus holds groups left over once the schedule ran out.
	Surplus []Group
	// Unrecorded lists schedule indices that received no group and were not
	// declared missed.
	Unrecorded []int
	// Skipped lists declared missed indices that were honoured.
	Skipped []int
	Dropped []Group
}

// Partition splits files, already in capture order, into recording groups.
func Partition(files []recording.File, markers []string) []Group {
	markerSet := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		markerSet[m] = struct{}{}
	}

	var groups []Group
	var current []recording.File
	for _, file := range files {
		if len(current) > 0 && current[len(current)-1].GroupKey() != file.GroupKey() {
			groups = append(groups, Group{Files: current})
			current = nil
		}
		current = append(current, file)
		if _, ok := markerSet[file.Name]; ok {
			groups = append(groups, Group{Files: current})
			current = []recording.File{file}
		}
	}
	if len(current) > 0 {
		groups = append(groups, Group{Files: current})
	}
	return groups
}

// Filter drops single-file groups shorter than minDuration. Multi-file
// groups are kept without probing. Probe failures abort the filter.
func Filter(ctx context.Context, groups []Group, prober Prober, minDuration time.Duration) (kept, dropped []Group, err error) {
	threshold := minDuration.Seconds()
	for _, group := range groups {
		if len(group.Files) != 1 {
			kept = append(kept, group)
			continue
		}
		seconds, err := prober.Duration(ctx, group.Files[0].Path)
		if err != nil {
			return nil, nil, err
		}
		if seconds < threshold {
			dropped = append(dropped, group)
			continue
		}
		kept = append(kept, group)
	}
	return kept, dropped, nil
}

// Match zips groups against games in order. Schedule indices in missed are
// skipped without consuming a group. When the schedule runs out the remaining
// groups are returned as surplus; games left without a group are reported as
// unrecorded.
func Match(groups []Group, games []schedule.Game, missed []int) Result {
	var result Result
	next := 0
	for idx, game := range games {
		if slices.Contains(missed, idx) {
			result.Skipped = append(result.Skipped, idx)
			continue
		}
		if next >= len(groups) {
			result.Unrecorded = append(result.Unrecorded, idx)
			continue
		}
		result.Games = append(result.Games, MatchedGame{Index: idx, Game: game, Group: groups[next]})
		next++
	}
	if next < len(groups) {
		result.Surplus = append(result.Surplus, groups[next:]...)
	}
	return result
}

// Run matches one court's recordings to its schedule: Partition, then
// Filter, then Match.
func Run(ctx context.Context, files []recording.File, games []schedule.Game, prober Prober, opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "matcher")
	minDuration := opts.MinDuration
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}

	groups := Partition(files, opts.BoundaryMarkers)
	kept, dropped, err := Filter(ctx, groups, prober, minDuration)
	if err != nil {
		return Result{}, err
	}
	for _, group := range dropped {
		logger.Info("dropped short recording",
			logging.String("file", group.Files[0].Name),
			logging.Duration("min_duration", minDuration),
		)
	}

	result := Match(kept, games, opts.MissedIndices)
	result.Dropped = dropped
	for _, m := range result.Games {
		logger.Debug("matched recording",
			logging.Int("index", m.Index),
			logging.String(logging.FieldGame, m.Game.Label()),
			logging.Strings("files", m.Group.Names()),
		)
	}
	logger.Info("matching complete",
		logging.Int("groups", len(groups)),
		logging.Int("kept", len(kept)),
		logging.Int("matched", len(result.Games)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("unrecorded", len(result.Unrecorded)),
		logging.Int("surplus", len(result.Surplus)),
	)
	return result, nil
}
