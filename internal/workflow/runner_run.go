package workflow

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rollcall/internal/history"
	"rollcall/internal/logging"
	"rollcall/internal/scanner"
	"rollcall/internal/services"
	"rollcall/internal/staging"
)

// Run identifies and renames every media file directly inside dir. The
// returned Summary is valid even when an error is returned; a cancelled
// context yields the outcomes completed so far and ctx.Err().
func (r *Runner) Run(ctx context.Context, dir string) (Summary, error) {
	logger := logging.NewComponentLogger(r.Logger, "workflow")

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "scan", "resolve directory", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "scan", "stat directory", abs, err)
	}
	if !info.IsDir() {
		return Summary{}, services.Wrap(services.ErrValidation, "scan", "stat directory", abs+" is not a directory", nil)
	}

	lock, err := acquireLock(r.LockDir, abs)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scan", "lock directory", "", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("lock release failed", logging.Error(err))
		}
	}()

	r.sweepStaging(ctx, logger)

	files, err := scanner.Scan(abs, r.Extensions)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "scan", "list media files", abs, err)
	}

	area, err := staging.New(r.StagingRoot)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "extract", "create staging area", r.StagingRoot, err)
	}
	defer func() {
		if err := area.Release(); err != nil {
			logging.WarnWithContext(logger, "staging area not removed", "staging_release_failed",
				logging.Error(err),
				logging.String("path", area.Dir()),
				logging.String(logging.FieldImpact, "frames left on disk until the next stale sweep"),
			)
		}
	}()

	summary := Summary{
		RunID:     area.ID(),
		Directory: abs,
		DryRun:    r.DryRun,
		StartedAt: r.clock(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger = logging.WithContext(ctx, logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("directory", abs),
		logging.Int("files", len(files)),
		logging.Bool("dry_run", r.DryRun),
	)
	r.beginHistory(ctx, logger, summary)

	var runErr error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		outcome := r.processFile(ctx, area, path)
		summary.Outcomes = append(summary.Outcomes, outcome)
		r.recordHistory(ctx, logger, summary.RunID, outcome)
		if r.OnOutcome != nil {
			r.OnOutcome(outcome)
		}
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	summary.FinishedAt = r.clock()
	counts := summary.Counts()
	r.finishHistory(ctx, logger, summary.RunID, summary.FinishedAt, counts)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("renamed", counts.Renamed),
		logging.Int("planned", counts.Planned),
		logging.Int("unresolved", counts.Unresolved),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
		logging.Duration("run_duration", summary.FinishedAt.Sub(summary.StartedAt)),
	}
	if runErr != nil {
		attrs = append(attrs, logging.Error(runErr))
		logger.Warn("run interrupted", logging.Args(attrs...)...)
	} else {
		logger.Info("run completed", logging.Args(attrs...)...)
	}
	return summary, runErr
}

func (r *Runner) sweepStaging(ctx context.Context, logger *slog.Logger) {
	age := r.StaleAge
	if age <= 0 {
		age = staging.DefaultStaleAge
	}
	result := staging.CleanStale(ctx, r.StagingRoot, age, logger)
	if len(result.Removed) > 0 {
		logger.Info("removed stale staging areas",
			logging.String(logging.FieldEventType, "staging_swept"),
			logging.Int("count", len(result.Removed)),
		)
	}
}

// History writes use a context detached from cancellation so an
// interrupted run is still recorded.
func (r *Runner) beginHistory(ctx context.Context, logger *slog.Logger, summary Summary) {
	if r.History == nil {
		return
	}
	err := r.History.BeginRun(context.WithoutCancel(ctx), history.Run{
		ID:        summary.RunID,
		Directory: summary.Directory,
		Provider:  r.Provider,
		Model:     r.Model,
		DryRun:    summary.DryRun,
		StartedAt: summary.StartedAt,
	})
	if err != nil {
		historyWarning(logger, err)
	}
}

func (r *Runner) recordHistory(ctx context.Context, logger *slog.Logger, runID string, outcome Outcome) {
	if r.History == nil {
		return
	}
	entry := outcome.entry()
	entry.CreatedAt = r.clock()
	if err := r.History.Record(context.WithoutCancel(ctx), runID, entry); err != nil {
		historyWarning(logger, err)
	}
}

func (r *Runner) finishHistory(ctx context.Context, logger *slog.Logger, runID string, finishedAt time.Time, counts history.Counts) {
	if r.History == nil {
		return
	}
	if err := r.History.FinishRun(context.WithoutCancel(ctx), runID, finishedAt, counts); err != nil {
		historyWarning(logger, err)
	}
}

func historyWarning(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "history write failed", "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check state_dir permissions and free space"),
		logging.String(logging.FieldImpact, "run not recorded in history"),
	)
}
