package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tourneyreel/internal/assembler"
	"tourneyreel/internal/config"
	"tourneyreel/internal/logging"
	"tourneyreel/internal/media/ffmpeg"
	"tourneyreel/internal/metadata"
	"tourneyreel/internal/organize"
	"tourneyreel/internal/recording"
	"tourneyreel/internal/schedule"
	"tourneyreel/internal/scratch"
	"tourneyreel/internal/services"
	"tourneyreel/internal/textutil"
)

// Scratch entries older than this are left over from an interrupted run.
const staleScratchAge = 6 * time.Hour

type segmentView struct {
	Kind     string  `json:"kind"`
	Source   string  `json:"source,omitempty"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Trimmed  bool    `json:"trimmed"`
}

type planView struct {
	Index        int           `json:"index"`
	Game         string        `json:"game"`
	Title        string        `json:"title"`
	Output       string        `json:"output,omitempty"`
	MainSeconds  float64       `json:"main_seconds"`
	TotalSeconds float64       `json:"total_seconds"`
	Segments     []segmentView `json:"segments,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type outcomeView struct {
	Game    string  `json:"game"`
	Key     string  `json:"key"`
	Status  string  `json:"status"`
	Output  string  `json:"output,omitempty"`
	Seconds float64 `json:"seconds"`
	Elapsed string  `json:"elapsed"`
	Error   string  `json:"error,omitempty"`
}

// workspace resolves the directories and metadata for a recordings directory.
type workspace struct {
	recordings string
	outputDir  string
	entries    []metadata.Entry
}

func loadWorkspace(cfg *config.Config, dir string, withMetadata bool) (workspace, error) {
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return workspace{}, services.Wrap(services.ErrValidation, "cli", "resolve directory", dir, err)
	}
	ws := workspace{recordings: expanded, outputDir: cfg.OutputDirFor(expanded)}
	if withMetadata {
		entries, err := metadata.Read(filepath.Join(ws.outputDir, metadata.FileName))
		if err != nil {
			return workspace{}, err
		}
		ws.entries = entries
	}
	return ws, nil
}

// selectEntries narrows entries to one zero-based index when game >= 0.
func selectEntries(entries []metadata.Entry, game int) ([]metadata.Entry, []int, error) {
	if game < 0 {
		indices := make([]int, len(entries))
		for i := range entries {
			indices[i] = i
		}
		return entries, indices, nil
	}
	if game >= len(entries) {
		return nil, nil, services.Wrap(services.ErrValidation, "cli", "select game",
			fmt.Sprintf("--game %d is out of range (metadata has %d games)", game, len(entries)), nil)
	}
	return entries[game : game+1], []int{game}, nil
}

func courtLabel(court int) string {
	if court <= 0 {
		return ""
	}
	return schedule.CourtName(court)
}

func planOptions(cfg *config.Config, outputDir string, court int) assembler.PlanOptions {
	return assembler.PlanOptions{
		IntroSeconds: cfg.Assembly.IntroSeconds,
		OutroSeconds: cfg.Assembly.OutroSeconds,
		OutputDir:    outputDir,
		Court:        courtLabel(court),
	}
}

func cardStyle(cfg *config.Config) ffmpeg.CardStyle {
	return ffmpeg.CardStyle{
		FontPath:   cfg.Cards.FontPath,
		FontColor:  cfg.Cards.FontColor,
		Background: cfg.Cards.Background,
		LogoWidth:  cfg.Cards.LogoWidth,
	}
}

func buildPlanView(index int, plan assembler.Plan, label string, err error) planView {
	view := planView{Index: index, Game: label}
	if err != nil {
		view.Error = err.Error()
		return view
	}
	view.Title = plan.Title
	view.Output = plan.Output
	view.MainSeconds = plan.MainDuration()
	view.TotalSeconds = plan.TotalDuration()
	for _, seg := range plan.Segments {
		view.Segments = append(view.Segments, segmentView{
			Kind:     string(seg.Kind),
			Source:   seg.Source,
			Start:    seg.Start,
			End:      seg.End,
			Duration: seg.Duration,
			Trimmed:  seg.NeedsTrim(),
		})
	}
	return view
}

func describeSegments(view planView) string {
	if view.Error != "" {
		return "error: " + view.Error
	}
	parts := make([]string, 0, len(view.Segments))
	for _, seg := range view.Segments {
		switch seg.Kind {
		case string(assembler.SegmentMain):
			label := filepath.Base(seg.Source)
			if seg.Trimmed {
				label += fmt.Sprintf(" [%s-%s]", ffmpeg.FormatSeconds(seg.Start), ffmpeg.FormatSeconds(seg.End))
			}
			parts = append(parts, label)
		default:
			parts = append(parts, fmt.Sprintf("%s %gs", seg.Kind, seg.Duration))
		}
	}
	return strings.Join(parts, " + ")
}

func formatClock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var court int
	var game int

	cmd := &cobra.Command{
		Use:   "plan <dir>",
		Short: "Show the timeline for each game in metadata.json without running ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			ws, err := loadWorkspace(cfg, args[0], true)
			if err != nil {
				return err
			}
			entries, indices, err := selectEntries(ws.entries, game)
			if err != nil {
				return err
			}

			runCtx := ctx.runContext(cmd)
			prober := ctx.prober()
			opts := planOptions(cfg, ws.outputDir, court)
			views := make([]planView, 0, len(entries))
			var errs []error
			for i, entry := range entries {
				plan, err := assembler.BuildPlan(runCtx, entry, prober, opts)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", entry.Label(), err))
				}
				views = append(views, buildPlanView(indices[i], plan, entry.Label(), err))
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, views); err != nil {
					return err
				}
				return errors.Join(errs...)
			}

			rows := make([][]string, 0, len(views))
			var total float64
			for _, v := range views {
				total += v.TotalSeconds
				rows = append(rows, []string{
					strconv.Itoa(v.Index),
					v.Game,
					describeSegments(v),
					formatClock(v.MainSeconds),
					formatClock(v.TotalSeconds),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTableWithFooter(
				[]string{"#", "Game", "Timeline", "Footage", "Total"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
				[]string{"", fmt.Sprintf("%d game(s)", len(views)), "", "", formatClock(total)},
			))
			return errors.Join(errs...)
		},
	}

	cmd.Flags().IntVar(&court, "court", 0, "Court number used in titles when metadata has none")
	cmd.Flags().IntVar(&game, "game", -1, "Only plan this metadata.json index (0-based)")
	return cmd
}

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var court int
	var game int
	var force bool

	cmd := &cobra.Command{
		Use:   "assemble <dir>",
		Short: "Build intro + footage + outro videos for the games in metadata.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerFor(cmd)
			ws, err := loadWorkspace(cfg, args[0], true)
			if err != nil {
				return err
			}
			entries, _, err := selectEntries(ws.entries, game)
			if err != nil {
				return err
			}

			lock, err := organize.LockDir(ws.recordings)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			runCtx := services.WithStage(ctx.runContext(cmd), "assemble")
			if court > 0 {
				runCtx = services.WithCourt(runCtx, court)
			}
			scratch.CleanStale(runCtx, filepath.Join(ws.outputDir, "final"), staleScratchAge, logger)

			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()
			if n, err := store.ResetRunning(runCtx); err != nil {
				return err
			} else if n > 0 {
				logging.WarnWithContext(logger, "previous run was interrupted", "ledger_reset",
					logging.Int("games", int(n)),
					logging.String(logging.FieldImpact, "those games will be assembled again"),
				)
			}

			asm := assembler.New(ctx.ffmpeg(cmd), ctx.prober(), assembler.Options{
				Plan:        planOptions(cfg, ws.outputDir, court),
				Style:       cardStyle(cfg),
				Banner:      cfg.Cards.Banner,
				Parallelism: cfg.Assembly.Parallelism,
				Force:       force,
				Ledger:      store,
				Logger:      logger,
			})
			summary := asm.AssembleAll(runCtx, entries)
			return reportSummary(cmd, ctx, summary)
		},
	}

	cmd.Flags().IntVar(&court, "court", 0, "Court number used in titles when metadata has none")
	cmd.Flags().IntVar(&game, "game", -1, "Only assemble this metadata.json index (0-based)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-assemble games the ledger already marks done")
	return cmd
}

func reportSummary(cmd *cobra.Command, ctx *commandContext, summary assembler.Summary) error {
	views := make([]outcomeView, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		v := outcomeView{
			Game:    o.Game,
			Key:     o.Key,
			Status:  string(o.Status),
			Output:  o.Output,
			Seconds: o.Duration,
			Elapsed: o.Elapsed.Round(time.Second).String(),
		}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		views = append(views, v)
	}
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, views); err != nil {
			return err
		}
		return summary.Err()
	}

	rows := make([][]string, 0, len(views))
	done := 0
	for _, v := range views {
		if v.Status == string(assembler.StatusDone) {
			done++
		}
		detail := v.Error
		if detail == "" && v.Output != "" {
			detail = filepath.Base(v.Output)
		}
		rows = append(rows, []string{v.Game, v.Status, formatClock(v.Seconds), v.Elapsed, detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTableWithFooter(
		[]string{"Game", "Status", "Length", "Elapsed", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		[]string{fmt.Sprintf("%d/%d assembled", done, len(views)), "", "", "", ""},
	))
	return summary.Err()
}

func newPlayoffCommand(ctx *commandContext) *cobra.Command {
	var (
		startFile string
		startAt   string
		length    float64
		output    string
		withCards bool
		court     int
		game      schedule.Game
	)

	cmd := &cobra.Command{
		Use:   "playoff <dir>",
		Short: "Cut a fixed-length playoff round out of continuous recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerFor(cmd)
			ws, err := loadWorkspace(cfg, args[0], false)
			if err != nil {
				return err
			}
			start, err := ffmpeg.ParseTimestamp(startAt)
			if err != nil {
				return err
			}
			if length <= 0 {
				length = cfg.Assembly.PlayoffRoundSeconds
			}

			runCtx := services.WithStage(ctx.runContext(cmd), "playoff")
			prober := ctx.prober()
			files, err := recording.List(runCtx, ws.recordings, recording.ListOptions{
				Extension: cfg.Matcher.Extension,
				Order:     cfg.Matcher.CaptureOrder,
				Timer:     prober,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			game.Bracket = true
			if strings.TrimSpace(game.Round) == "" {
				game.Round = "Playoff"
			}
			if game.HomeTeam == "" && game.AwayTeam == "" {
				game.HomeTeam, game.AwayTeam = "Home", "Away"
			}
			opts := planOptions(cfg, ws.outputDir, court)
			plan, err := assembler.PlanWindow(runCtx, files, assembler.WindowRequest{
				Game:         game,
				StartFile:    startFile,
				StartSeconds: start,
				Length:       length,
				WithCards:    withCards,
			}, prober, opts)
			if err != nil {
				return err
			}
			if name := strings.TrimSpace(output); name != "" {
				if filepath.Ext(name) == "" {
					name += ".mp4"
				}
				plan.Output = filepath.Join(ws.outputDir, "final", textutil.SanitizeFileName(name))
			}

			asm := assembler.New(ctx.ffmpeg(cmd), prober, assembler.Options{
				Plan:   opts,
				Style:  cardStyle(cfg),
				Banner: cfg.Cards.Banner,
				Logger: logger,
			})
			path, err := asm.Execute(runCtx, plan)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, buildPlanView(0, plan, game.Label(), nil))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s of footage)\n", path, formatClock(plan.MainDuration()))
			return nil
		},
	}

	cmd.Flags().StringVar(&startFile, "start-file", "", "Recording the round starts in")
	cmd.Flags().StringVar(&startAt, "start-seconds", "0", "Offset into the start file (seconds, MM:SS or HH:MM:SS)")
	cmd.Flags().Float64Var(&length, "length", 0, "Round length in seconds (default assembly.playoff_round_seconds)")
	cmd.Flags().StringVar(&output, "output", "", "Output file name under final/ (default derived from the game)")
	cmd.Flags().BoolVar(&withCards, "cards", false, "Add intro and outro cards")
	cmd.Flags().IntVar(&court, "court", 0, "Court number for the title")
	cmd.Flags().StringVar(&game.HomeTeam, "home", "", "Home team")
	cmd.Flags().StringVar(&game.AwayTeam, "away", "", "Away team")
	cmd.Flags().StringVar(&game.Round, "round", "", "Bracket round, for example Quarters")
	cmd.Flags().StringVar(&game.Subround, "subround", "", "Bracket subround, for example \"first series\"")
	_ = cmd.MarkFlagRequired("start-file")
	return cmd
}
