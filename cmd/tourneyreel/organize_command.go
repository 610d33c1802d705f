package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tourneyreel/internal/organize"
	"tourneyreel/internal/services"
)

type organizedGameView struct {
	Index   int      `json:"index"`
	Game    string   `json:"game"`
	Round   string   `json:"round"`
	Sources []string `json:"sources"`
	Parts   []string `json:"parts"`
}

type organizeView struct {
	Court      int                 `json:"court"`
	DryRun     bool                `json:"dry_run"`
	OutputDir  string              `json:"output_dir"`
	Metadata   string              `json:"metadata,omitempty"`
	Games      []organizedGameView `json:"games"`
	Skipped    []int               `json:"skipped_indices"`
	Unrecorded []int               `json:"unrecorded_indices"`
	Surplus    [][]string          `json:"surplus_groups"`
	Dropped    [][]string          `json:"dropped_groups"`
	Copied     int                 `json:"copied"`
	Unchanged  int                 `json:"unchanged"`
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var court int
	var bracket bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize <dir>",
		Short: "Match a court's recordings to its schedule and write metadata.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerFor(cmd)
			org := organize.New(cfg, ctx.prober(), logger)
			report, runErr := org.Run(ctx.runContext(cmd), organize.Request{
				Dir:     args[0],
				Court:   court,
				Bracket: bracket,
				DryRun:  dryRun,
			})
			if runErr != nil && !errors.Is(runErr, services.ErrMisaligned) {
				return runErr
			}

			view := buildOrganizeView(report)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
				return runErr
			}
			renderOrganizeView(cmd, view)
			return runErr
		},
	}

	cmd.Flags().IntVar(&court, "court", 0, "Court number (1-based)")
	cmd.Flags().BoolVar(&bracket, "bracket", false, "Match against the playoff bracket instead of the round robin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the matching without copying files or writing metadata")
	_ = cmd.MarkFlagRequired("court")
	return cmd
}

func buildOrganizeView(report organize.Report) organizeView {
	view := organizeView{
		Court:      report.Court,
		DryRun:     report.DryRun,
		OutputDir:  report.OutputDir,
		Games:      []organizedGameView{},
		Skipped:    nonNilInts(report.Match.Skipped),
		Unrecorded: nonNilInts(report.Match.Unrecorded),
		Surplus:    [][]string{},
		Dropped:    [][]string{},
		Copied:     report.Copied,
		Unchanged:  report.Unchanged,
	}
	if !report.DryRun {
		view.Metadata = report.MetadataPath
	}
	for _, g := range report.Games {
		view.Games = append(view.Games, organizedGameView{
			Index:   g.Index,
			Game:    g.Game.Label(),
			Round:   g.Game.Round,
			Sources: g.Sources,
			Parts:   g.Parts,
		})
	}
	for _, g := range report.Match.Surplus {
		view.Surplus = append(view.Surplus, g.Names())
	}
	for _, g := range report.Match.Dropped {
		view.Dropped = append(view.Dropped, g.Names())
	}
	return view
}

func renderOrganizeView(cmd *cobra.Command, view organizeView) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(view.Games))
	for _, g := range view.Games {
		names := make([]string, len(g.Sources))
		for i, s := range g.Sources {
			names[i] = filepath.Base(s)
		}
		rows = append(rows, []string{
			strconv.Itoa(g.Index),
			g.Round,
			g.Game,
			strings.Join(names, ", "),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No games matched")
	} else {
		fmt.Fprintln(out, renderTable([]string{"#", "Round", "Game", "Recordings"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
	}

	if view.DryRun {
		fmt.Fprintf(out, "Dry run: nothing written (parts would go to %s)\n", view.OutputDir)
	} else {
		fmt.Fprintf(out, "Copied %d part(s), %d unchanged; metadata at %s\n", view.Copied, view.Unchanged, view.Metadata)
	}
	if len(view.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped (declared missed): %s\n", joinInts(view.Skipped))
	}
	if len(view.Unrecorded) > 0 {
		fmt.Fprintf(out, "Unrecorded schedule entries: %s\n", joinInts(view.Unrecorded))
	}
	for _, names := range view.Dropped {
		fmt.Fprintf(out, "Dropped short recording: %s\n", strings.Join(names, ", "))
	}
	for _, names := range view.Surplus {
		fmt.Fprintf(out, "Surplus recordings: %s\n", strings.Join(names, ", "))
	}
}

func nonNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
