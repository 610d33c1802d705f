package organize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tourneyreel/internal/config"
	"tourneyreel/internal/fileutil"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/matcher"
	"tourneyreel/internal/metadata"
	"tourneyreel/internal/recording"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

// Prober answers the media questions organizing needs.
type Prober interface {
	matcher.Prober
	recording.CaptureTimer
}

// Request describes one organize run.
type Request struct {
	Dir     string
	Court   int
	Bracket bool
	DryRun  bool
	// MissedIndices overrides the configured missed games when non-nil.
	MissedIndices []int
}

// PlannedGame is a matched game with the part files it was copied to.
type PlannedGame struct {
	Index   int
	Game    schedule.Game
	Sources []string
	Parts   []string
}

// Report summarizes an organize run.
type Report struct {
	Court        int
	OutputDir    string
	MetadataPath string
	DryRun       bool
	Games        []PlannedGame
	Match        matcher.Result
	Copied       int
	Unchanged    int
}

// Organizer matches a court's recordings to its schedule and lays out the
// part files and metadata.json for assembly.
type Organizer struct {
	cfg    *config.Config
	prober Prober
	source schedule.Source
	logger *slog.Logger
}

// New constructs an Organizer.
func New(cfg *config.Config, prober Prober, logger *slog.Logger) *Organizer {
	return &Organizer{
		cfg:    cfg,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "organize"),
	}
}

// WithSource overrides the configured schedule source.
func (o *Organizer) WithSource(src schedule.Source) {
	if o != nil && src != nil {
		o.source = src
	}
}

// Run executes the organize stage. Metadata is written for every matched
// game even when surplus recordings remain; the surplus is then reported as
// ErrMisaligned.
func (o *Organizer) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{Court: req.Court, DryRun: req.DryRun}
	if req.Court < 1 || req.Court > o.cfg.Schedule.Courts {
		return report, services.Wrap(services.ErrValidation, "organize", "request",
			fmt.Sprintf("court %d is outside 1..%d", req.Court, o.cfg.Schedule.Courts), nil)
	}
	dir, err := config.ExpandPath(req.Dir)
	if err != nil {
		return report, services.Wrap(services.ErrValidation, "organize", "request", req.Dir, err)
	}
	ctx = services.WithStage(services.WithCourt(ctx, req.Court), "organize")
	logger := logging.WithContext(ctx, o.logger)

	lock, err := LockDir(dir)
	if err != nil {
		return report, err
	}
	defer func() { _ = lock.Unlock() }()

	files, err := recording.List(ctx, dir, recording.ListOptions{
		Extension: o.cfg.Matcher.Extension,
		Order:     o.cfg.Matcher.CaptureOrder,
		Timer:     o.prober,
		Logger:    o.logger,
	})
	if err != nil {
		return report, err
	}
	logger.Info("recordings listed", logging.Int("files", len(files)), logging.String("dir", dir))

	games, err := o.loadSchedule(ctx, req)
	if err != nil {
		return report, err
	}
	logger.Info("schedule loaded", logging.Int("games", len(games)), logging.Bool("bracket", req.Bracket))

	missed := req.MissedIndices
	if missed == nil {
		missed = o.cfg.MissedIndicesFor(req.Court)
	}
	result, err := matcher.Run(ctx, files, games, o.prober, matcher.Options{
		MinDuration:     time.Duration(o.cfg.Matcher.MinDurationSeconds * float64(time.Second)),
		BoundaryMarkers: o.cfg.Matcher.BoundaryMarkers,
		MissedIndices:   missed,
		Logger:          o.logger,
	})
	if err != nil {
		return report, err
	}
	report.Match = result

	report.OutputDir = o.cfg.OutputDirFor(dir)
	report.MetadataPath = filepath.Join(report.OutputDir, metadata.FileName)
	for _, m := range result.Games {
		planned := PlannedGame{Index: m.Index, Game: m.Game, Sources: m.Group.Paths()}
		for n, file := range m.Group.Files {
			part := filepath.Join(report.OutputDir, PartName(m.Game, n+1, filepath.Ext(file.Name)))
			planned.Parts = append(planned.Parts, part)
		}
		report.Games = append(report.Games, planned)
	}

	if !req.DryRun {
		if err := o.copyParts(ctx, &report); err != nil {
			return report, err
		}
		if err := o.writeMetadata(&report); err != nil {
			return report, err
		}
		logger.Info("metadata written", logging.String("path", report.MetadataPath), logging.Int("games", len(report.Games)))
	} else {
		for _, g := range report.Games {
			logger.Info("dry run: would copy",
				logging.String(logging.FieldGame, g.Game.Label()),
				logging.Strings("parts", g.Parts),
			)
		}
	}

	for _, idx := range result.Unrecorded {
		logging.WarnWithContext(logger, "scheduled game has no recording", "game_unrecorded",
			logging.Int("index", idx),
			logging.String(logging.FieldGame, games[idx].Label()),
			logging.String(logging.FieldErrorHint, "declare the index under [matcher.missed_indices] if the game was never filmed"),
			logging.String(logging.FieldImpact, "no video will be produced for this game"),
		)
	}
	var problems []string
	if len(result.Surplus) > 0 {
		names := make([]string, 0, len(result.Surplus))
		for _, g := range result.Surplus {
			names = append(names, strings.Join(g.Names(), "+"))
		}
		problems = append(problems, fmt.Sprintf("%d recording group(s) left after the schedule ran out: %s", len(result.Surplus), strings.Join(names, ", ")))
	}
	if len(result.Unrecorded) > 0 {
		indices := make([]string, len(result.Unrecorded))
		for i, idx := range result.Unrecorded {
			indices[i] = strconv.Itoa(idx)
		}
		problems = append(problems, fmt.Sprintf("schedule entries %s have no recording and are not declared missed", strings.Join(indices, ", ")))
	}
	if len(problems) > 0 {
		return report, services.Wrap(services.ErrMisaligned, "organize", "match", strings.Join(problems, "; "), nil)
	}
	return report, nil
}

func (o *Organizer) loadSchedule(ctx context.Context, req Request) ([]schedule.Game, error) {
	src := o.source
	if src == nil {
		path, url := o.cfg.ScheduleSource(req.Bracket)
		var err error
		src, err = schedule.NewSource(path, url, time.Duration(o.cfg.Schedule.TimeoutSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
	}
	games, err := schedule.Load(ctx, src, schedule.LoadOptions{
		Court:      req.Court,
		Courts:     o.cfg.Schedule.Courts,
		Bracket:    req.Bracket,
		RoundOrder: o.cfg.Schedule.RoundOrder,
	})
	if err != nil {
		return nil, err
	}

	if o.cfg.Paths.LogoDir != "" {
		resolver, err := schedule.NewLogoResolver(o.cfg.Paths.LogoDir)
		if err != nil {
			logging.WarnWithContext(o.logger, "team logos unavailable", "logos_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "title cards will show names only"),
			)
		} else {
			resolver.Apply(games)
		}
	}
	return games, nil
}

func (o *Organizer) copyParts(ctx context.Context, report *Report) error {
	if err := os.MkdirAll(report.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "organize", "create output directory", report.OutputDir, err)
	}
	for _, g := range report.Games {
		for i, src := range g.Sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := fileutil.CopyFileAtomic(src, g.Parts[i])
			if err != nil {
				return services.Wrap(services.ErrTransient, "organize", "copy part", filepath.Base(src), err)
			}
			if res.Skipped {
				report.Unchanged++
				continue
			}
			report.Copied++
			o.logger.Info("copied recording",
				logging.String("source", filepath.Base(src)),
				logging.String("part", filepath.Base(g.Parts[i])),
				logging.String("sha256", res.SHA256),
			)
		}
	}
	return nil
}

func (o *Organizer) writeMetadata(report *Report) error {
	games := make([]schedule.Game, len(report.Games))
	parts := make([][]string, len(report.Games))
	for i, g := range report.Games {
		games[i] = g.Game
		parts[i] = g.Parts
	}
	entries, err := metadata.FromMatched(games, parts)
	if err != nil {
		return err
	}
	return metadata.Write(report.MetadataPath, entries)
}

// PartName returns the organized file name for part n of game, for example
// sky_dogs_plank_round_robin_round_1_part_2.mp4.
func PartName(game schedule.Game, n int, ext string) string {
	kind := "round_robin"
	if game.Bracket {
		kind = "bracket"
	}
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s_%s_%s_round_%s_part_%d%s",
		textutil.TeamSlug(game.HomeTeam),
		textutil.TeamSlug(game.AwayTeam),
		kind,
		textutil.TeamSlug(game.Round),
		n,
		strings.ToLower(ext),
	)
}
