package workflow

import (
	"context"
	"log/slog"
	"time"

	"rollcall/internal/history"
	"rollcall/internal/identify"
	"rollcall/internal/organizer"
	"rollcall/internal/sampling"
)

// Prober reports media durations.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, bool, error)
}

// FrameSource writes sampled frames for a window into dir.
type FrameSource interface {
	Extract(ctx context.Context, input string, window sampling.Window, dir string) ([]string, error)
}

// Identifier turns an ordered frame list into a title.
type Identifier interface {
	Run(ctx context.Context, frames []string) identify.Result
}

// Renamer applies a resolved title to a file.
type Renamer interface {
	Rename(ctx context.Context, src, title string) (organizer.Plan, error)
}

// Recorder persists run history. *history.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, run history.Run) error
	Record(ctx context.Context, runID string, entry history.Entry) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, counts history.Counts) error
}

// Runner processes every media file in a directory sequentially.
type Runner struct {
	Extensions  []string
	Policy      sampling.Policy
	StagingRoot string
	LockDir     string
	// StaleAge bounds how old an abandoned staging area must be before it
	// is swept. Zero uses staging.DefaultStaleAge.
	StaleAge time.Duration
	DryRun   bool
	Provider string
	Model    string

	Prober     Prober
	Frames     FrameSource
	Identifier Identifier
	Renamer    Renamer
	// History is optional.
	History Recorder

	Logger *slog.Logger
	// OnOutcome, when set, is called after each file completes.
	OnOutcome func(Outcome)

	now func() time.Time
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
