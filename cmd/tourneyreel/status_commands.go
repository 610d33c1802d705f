package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tourneyreel/internal/config"
	"tourneyreel/internal/ledger"
	"tourneyreel/internal/preflight"
	"tourneyreel/internal/scratch"
	"tourneyreel/internal/services"
)

type attemptView struct {
	Key      string `json:"key"`
	Game     string `json:"game"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Updated  string `json:"updated_at"`
}

type checkView struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var forget string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List assembly attempts recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()
			runCtx := ctx.runContext(cmd)

			if key := strings.TrimSpace(forget); key != "" {
				if err := store.Forget(runCtx, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s; it will be assembled on the next run\n", key)
				return nil
			}

			filter := make([]ledger.Status, 0, len(statuses))
			for _, s := range statuses {
				status := ledger.Status(strings.ToLower(strings.TrimSpace(s)))
				switch status {
				case ledger.StatusPending, ledger.StatusRunning, ledger.StatusDone, ledger.StatusFailed:
					filter = append(filter, status)
				default:
					return services.Wrap(services.ErrValidation, "cli", "status", fmt.Sprintf("unknown status %q", s), nil)
				}
			}
			attempts, err := store.List(runCtx, filter...)
			if err != nil {
				return err
			}

			views := make([]attemptView, 0, len(attempts))
			for _, a := range attempts {
				views = append(views, attemptView{
					Key:      a.Key,
					Game:     a.Label,
					Status:   string(a.Status),
					Attempts: a.Attempts,
					Output:   a.Output,
					Error:    a.Error,
					RunID:    a.RunID,
					Updated:  a.UpdatedAt.Format(time.RFC3339),
				})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty")
				return nil
			}
			rows := make([][]string, 0, len(attempts))
			for i, a := range attempts {
				detail := a.Output
				if a.Status == ledger.StatusFailed {
					detail = a.Error
				}
				rows = append(rows, []string{
					views[i].Game,
					views[i].Status,
					strconv.Itoa(a.Attempts),
					humanize.Time(a.UpdatedAt),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Game", "Status", "Attempts", "Updated", "Output / Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show these statuses (pending, running, done, failed)")
	cmd.Flags().StringVar(&forget, "forget", "", "Remove one game key from the ledger")
	return cmd
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var recordings string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories, and schedule sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			dir := ""
			if strings.TrimSpace(recordings) != "" {
				expanded, err := config.ExpandPath(recordings)
				if err != nil {
					return services.Wrap(services.ErrValidation, "cli", "resolve directory", recordings, err)
				}
				dir = expanded
			}

			results := preflight.RunAll(ctx.runContext(cmd), cfg, dir)
			views := make([]checkView, 0, len(results))
			for _, r := range results {
				views = append(views, checkView{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}
			var leftovers []scratch.Entry
			if dir != "" {
				leftovers, _ = scratch.List(filepath.Join(cfg.OutputDirFor(dir), "final"))
			}

			failed := preflight.Failed(results)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, views); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.Name, passFail(v.Passed), v.Detail})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, rows, nil))
				for _, e := range leftovers {
					fmt.Fprintf(out, "Leftover scratch: %s (%s, %s)\n", e.Path, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime))
				}
			}
			if failed > 0 {
				return services.Wrap(services.ErrConfiguration, "doctor", "", fmt.Sprintf("%d check(s) failed", failed), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordings, "dir", "", "Recordings directory to check as well")
	return cmd
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}
