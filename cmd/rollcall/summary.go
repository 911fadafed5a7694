package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"rollcall/internal/workflow"
)

func renderSummary(summary workflow.Summary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		rows = append(rows, []string{
			filepath.Base(o.Path),
			string(o.Status),
			outcomeDetail(o),
			strconv.Itoa(o.Frames),
			strconv.Itoa(o.OCRCalls),
		})
	}
	counts := summary.Counts()
	parts := []string{fmt.Sprintf("%d renamed", counts.Renamed)}
	if summary.DryRun {
		parts = []string{fmt.Sprintf("%d planned", counts.Planned)}
	}
	parts = append(parts,
		fmt.Sprintf("%d unresolved", counts.Unresolved),
		fmt.Sprintf("%d skipped", counts.Skipped),
		fmt.Sprintf("%d failed", counts.Failed),
	)
	footer := []string{fmt.Sprintf("%d files", counts.Total()), strings.Join(parts, ", ")}

	return renderTable(
		[]string{"File", "Status", "Title / Detail", "Frames", "OCR"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		footer...,
	)
}

func outcomeDetail(o workflow.Outcome) string {
	switch o.Status {
	case workflow.StatusRenamed, workflow.StatusPlanned:
		target := filepath.Base(o.NewPath)
		if o.Fallback {
			target += " (search)"
		}
		return target
	case workflow.StatusUnresolved:
		return "no title found"
	default:
		return truncate(o.Reason(), 60)
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
