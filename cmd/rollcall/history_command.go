package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rollcall/internal/history"
)

const historyLookback = 200

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the file outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 0 {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list runs: %w", err)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprint(out, renderRuns(runs))
				return nil
			}

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return fmt.Errorf("list outcomes: %w", err)
			}
			fmt.Fprintf(out, "Run %s  %s  %s\n", run.ID, run.StartedAt.Local().Format(time.DateTime), run.Directory)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No files recorded for this run")
				return nil
			}
			fmt.Fprint(out, renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

// findRun resolves a full run id or a unique prefix among recent runs.
func findRun(cmd *cobra.Command, store *history.Store, id string) (history.Run, error) {
	id = strings.TrimSpace(id)
	runs, err := store.RecentRuns(cmd.Context(), historyLookback)
	if err != nil {
		return history.Run{}, fmt.Errorf("list runs: %w", err)
	}
	var matches []history.Run
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
		if strings.HasPrefix(run.ID, id) {
			matches = append(matches, run)
		}
	}
	switch len(matches) {
	case 0:
		return history.Run{}, fmt.Errorf("no run matches %q", id)
	case 1:
		return matches[0], nil
	default:
		return history.Run{}, fmt.Errorf("run id %q is ambiguous (%d matches)", id, len(matches))
	}
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "apply"
		if run.DryRun {
			mode = "dry-run"
		}
		status := "interrupted"
		if run.Finished() {
			status = run.FinishedAt.Sub(run.StartedAt).Truncate(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			filepath.Base(run.Directory),
			mode,
			strconv.Itoa(run.Counts.Renamed + run.Counts.Planned),
			strconv.Itoa(run.Counts.Unresolved),
			strconv.Itoa(run.Counts.Skipped + run.Counts.Failed),
			status,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Directory", "Mode", "Named", "Unresolved", "Problems", "Took"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderEntries(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Title
		if e.Reason != "" {
			detail = truncate(e.Reason, 60)
		}
		rows = append(rows, []string{
			filepath.Base(e.File),
			e.Status,
			detail,
			strconv.Itoa(e.Frames),
			strconv.Itoa(e.OCRCalls),
			yesNo(e.Fallback),
		})
	}
	return renderTable(
		[]string{"File", "Status", "Title / Detail", "Frames", "OCR", "Search"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
