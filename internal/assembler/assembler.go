package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"tourneyreel/internal/logging"
	"tourneyreel/internal/media/ffmpeg"
	"tourneyreel/internal/media/ffprobe"
	"tourneyreel/internal/metadata"
	"tourneyreel/internal/scratch"
	"tourneyreel/internal/services"
)

// Media performs the ffmpeg work for a plan.
type Media interface {
	Trim(ctx context.Context, src string, start, end float64, dst string) error
	Concat(ctx context.Context, sources []string, dst string) error
	RenderCard(ctx context.Context, spec ffmpeg.CardSpec, style ffmpeg.CardStyle, params ffprobe.VideoParams, dst string) error
}

// Ledger records assembly attempts so finished games are not redone.
type Ledger interface {
	Done(ctx context.Context, key string) (bool, error)
	Start(ctx context.Context, key, label string) error
	Finish(ctx context.Context, key, output string, runErr error) error
}

// Options configure an Assembler.
type Options struct {
	Plan        PlanOptions
	Style       ffmpeg.CardStyle
	Banner      string
	Parallelism int
	// Force re-assembles games the ledger reports as done.
	Force  bool
	Ledger Ledger
	Logger *slog.Logger
}

// Assembler executes timeline plans.
type Assembler struct {
	media  Media
	prober Prober
	opts   Options
	logger *slog.Logger
}

// New constructs an Assembler.
func New(media Media, prober Prober, opts Options) *Assembler {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Assembler{
		media:  media,
		prober: prober,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "assembler"),
	}
}

// Execute renders cards, trims the first and last sources when needed,
// concatenates everything, and moves the result to plan.Output. Every
// intermediate file lives in a scratch directory that is removed on return.
func (a *Assembler) Execute(ctx context.Context, plan Plan) (string, error) {
	main := plan.MainSegments()
	if len(main) == 0 {
		return "", services.Wrap(services.ErrValidation, "assembler", "execute", "plan has no footage", nil)
	}
	finalDir := filepath.Dir(plan.Output)
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "assembler", "execute", "create output directory", err)
	}
	workDir, err := os.MkdirTemp(finalDir, scratch.AssemblePrefix+"*")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "assembler", "execute", "create scratch directory", err)
	}
	defer os.RemoveAll(workDir)

	ext := filepath.Ext(main[0].Source)
	if ext == "" {
		ext = ".mp4"
	}
	var params ffprobe.VideoParams
	paramsLoaded := false

	parts := make([]string, 0, len(plan.Segments))
	for i, seg := range plan.Segments {
		dst := filepath.Join(workDir, fmt.Sprintf("%02d-%s%s", i, seg.Kind, ext))
		switch seg.Kind {
		case SegmentIntro, SegmentOutro:
			if !paramsLoaded {
				params, err = a.prober.VideoParams(ctx, main[0].Source)
				if err != nil {
					return "", err
				}
				paramsLoaded = true
			}
			if err := a.media.RenderCard(ctx, a.cardSpec(plan, seg), a.opts.Style, params, dst); err != nil {
				return "", err
			}
			parts = append(parts, dst)
		case SegmentMain:
			if !seg.NeedsTrim() {
				parts = append(parts, seg.Source)
				continue
			}
			end := seg.End
			if end >= seg.SourceDuration {
				end = -1
			}
			if err := a.media.Trim(ctx, seg.Source, seg.Start, end, dst); err != nil {
				return "", err
			}
			parts = append(parts, dst)
		}
	}

	joined := filepath.Join(workDir, "joined"+filepath.Ext(plan.Output))
	if err := a.media.Concat(ctx, parts, joined); err != nil {
		return "", err
	}
	if err := os.Rename(joined, plan.Output); err != nil {
		return "", services.Wrap(services.ErrTransient, "assembler", "execute", "move output into place", err)
	}
	return plan.Output, nil
}

func (a *Assembler) cardSpec(plan Plan, seg Segment) ffmpeg.CardSpec {
	game := plan.Game
	spec := ffmpeg.CardSpec{
		Title:    plan.Title,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
		HomeLogo: game.HomeLogo,
		AwayLogo: game.AwayLogo,
		Banner:   a.opts.Banner,
		Duration: seg.Duration,
	}
	if seg.Kind == SegmentOutro {
		spec.Title = "Final"
		if game.HomeScore != nil {
			spec.HomeScore = *game.HomeScore
		}
		if game.AwayScore != nil {
			spec.AwayScore = *game.AwayScore
		}
	}
	return spec
}

// Status is the outcome of one game in a batch.
type Status string

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome reports what happened to one game.
type Outcome struct {
	Game     string
	Key      string
	Output   string
	Status   Status
	Duration float64
	Elapsed  time.Duration
	Err      error
}

// Summary collects the outcomes of a batch in input order.
type Summary struct {
	Outcomes []Outcome
}

// Failed returns the failed outcomes.
func (s Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins the errors of every failed game.
func (s Summary) Err() error {
	var errs []error
	for _, o := range s.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Game, o.Err))
	}
	return errors.Join(errs...)
}

// GameKey identifies a game across runs and events: the absolute path of
// the video it produces. The same pairing at a later event lands in a
// different output directory and gets its own key.
func GameKey(entry metadata.Entry, opts PlanOptions) string {
	game := entry.Game()
	if game.Court == "" {
		game.Court = opts.Court
	}
	path := OutputPath(opts.OutputDir, game)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// AssembleAll plans and executes every entry, up to Parallelism at a time.
// A failing game does not stop the others.
func (a *Assembler) AssembleAll(ctx context.Context, entries []metadata.Entry) Summary {
	outcomes := make([]Outcome, len(entries))
	var g errgroup.Group
	g.SetLimit(a.opts.Parallelism)
	for i, entry := range entries {
		g.Go(func() error {
			outcomes[i] = a.assembleOne(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()
	return Summary{Outcomes: outcomes}
}

func (a *Assembler) assembleOne(ctx context.Context, entry metadata.Entry) Outcome {
	outcome := Outcome{Game: entry.Label(), Key: GameKey(entry, a.opts.Plan)}
	ctx = services.WithGame(ctx, outcome.Game)
	logger := logging.WithContext(ctx, a.logger)

	if err := ctx.Err(); err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		return outcome
	}
	if ledger := a.opts.Ledger; ledger != nil && !a.opts.Force {
		done, err := ledger.Done(ctx, outcome.Key)
		if err != nil {
			outcome.Status, outcome.Err = StatusFailed, err
			return outcome
		}
		if done {
			logger.Info("already assembled; skipping", logging.String("key", outcome.Key))
			outcome.Status = StatusSkipped
			return outcome
		}
	}

	started := time.Now()
	output, duration, err := a.run(ctx, entry, outcome)
	outcome.Elapsed = time.Since(started)
	outcome.Output = output
	outcome.Duration = duration
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		logging.ErrorWithContext(logger, "game assembly failed", "assembly_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return outcome
	}
	outcome.Status = StatusDone
	logger.Info("game assembled",
		logging.String("output", output),
		logging.Float64("seconds", duration),
		logging.Duration("elapsed", outcome.Elapsed),
	)
	return outcome
}

func (a *Assembler) run(ctx context.Context, entry metadata.Entry, outcome Outcome) (string, float64, error) {
	ledger := a.opts.Ledger
	if ledger != nil {
		if err := ledger.Start(ctx, outcome.Key, outcome.Game); err != nil {
			return "", 0, err
		}
	}
	plan, err := BuildPlan(ctx, entry, a.prober, a.opts.Plan)
	var output string
	if err == nil {
		output, err = a.Execute(ctx, plan)
	}
	if ledger != nil {
		if ferr := ledger.Finish(ctx, outcome.Key, output, err); ferr != nil && err == nil {
			err = ferr
		}
	}
	return output, plan.TotalDuration(), err
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTrimOutOfRange):
		return "adjust trim_time/end_trim_time in metadata.json"
	case errors.Is(err, services.ErrExternalTool):
		return "check ffmpeg/ffprobe output above and the source file"
	case errors.Is(err, services.ErrNotFound):
		return "confirm the organized part files still exist"
	default:
		return "check logs for details"
	}
}
