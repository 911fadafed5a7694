package workflow

import (
	"context"
	"path/filepath"
	"time"

	"rollcall/internal/identify"
	"rollcall/internal/logging"
	"rollcall/internal/services"
	"rollcall/internal/staging"
)

// Per-file stage names, carried in the context and in wrapped errors.
const (
	stageProbe    = "probe"
	stageExtract  = "extract"
	stageIdentify = "identify"
	stageRename   = "rename"
)

func (r *Runner) processFile(ctx context.Context, area *staging.Area, path string) Outcome {
	started := r.clock()
	ctx = services.WithFile(ctx, filepath.Base(path))
	outcome := Outcome{Path: path}

	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "workflow"))
	logger.Debug("file started", logging.String(logging.FieldEventType, "file_start"))

	duration, ok, err := r.Prober.Duration(services.WithStage(ctx, stageProbe), path)
	if err != nil {
		return r.finish(ctx, outcome, started, StatusSkipped,
			services.Wrap(services.ErrExternalTool, stageProbe, "ffprobe", "could not read media", err))
	}
	if !ok {
		return r.finish(ctx, outcome, started, StatusSkipped,
			services.Wrap(services.ErrValidation, stageProbe, "duration", "no duration reported", nil))
	}
	window := r.Policy.Window(duration)
	outcome.Duration = duration
	outcome.Start = window.Start

	if err := area.Reset(); err != nil {
		return r.finish(ctx, outcome, started, StatusSkipped,
			services.Wrap(services.ErrExternalTool, stageExtract, "reset staging", "", err))
	}
	frames, err := r.Frames.Extract(services.WithStage(ctx, stageExtract), path, window, area.Dir())
	if err != nil {
		return r.finish(ctx, outcome, started, StatusSkipped,
			services.Wrap(services.ErrExternalTool, stageExtract, "ffmpeg", "frame extraction failed", err))
	}
	logger.Debug("frames extracted",
		logging.Float64("duration_seconds", duration),
		logging.Float64("start_seconds", window.Start),
		logging.String("fps", window.FPS),
		logging.Int("frames", len(frames)),
	)

	result := r.Identifier.Run(services.WithStage(ctx, stageIdentify), frames)
	outcome.Frames = result.Frames
	outcome.Filtered = result.Filtered
	outcome.OCRCalls = result.OCRCalls
	outcome.RefineCalls = result.RefineCalls
	outcome.Fallback = result.FallbackCalled
	if err := ctx.Err(); err != nil {
		return r.finish(ctx, outcome, started, StatusFailed,
			services.Wrap(services.ErrTransient, stageIdentify, "", "run interrupted", err))
	}
	if result.State != identify.StateResolved {
		return r.finish(ctx, outcome, started, StatusUnresolved,
			services.Wrap(services.ErrNotFound, stageIdentify, "", "no title found in credits", nil))
	}
	outcome.Title = result.Title()

	plan, err := r.Renamer.Rename(services.WithStage(ctx, stageRename), path, outcome.Title)
	outcome.NewPath = plan.Target
	if err != nil {
		return r.finish(ctx, outcome, started, StatusFailed, err)
	}
	if plan.DryRun {
		return r.finish(ctx, outcome, started, StatusPlanned, nil)
	}
	return r.finish(ctx, outcome, started, StatusRenamed, nil)
}

func (r *Runner) finish(ctx context.Context, outcome Outcome, started time.Time, status Status, err error) Outcome {
	outcome.Status = status
	outcome.Err = err
	outcome.Elapsed = r.clock().Sub(started)

	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "workflow"))
	attrs := []logging.Attr{
		logging.String("status", string(status)),
		logging.Int("frames", outcome.Frames),
		logging.Int("ocr_calls", outcome.OCRCalls),
		logging.Duration("file_duration", outcome.Elapsed),
	}
	switch status {
	case StatusRenamed, StatusPlanned:
		attrs = append(attrs,
			logging.String(logging.FieldEventType, "file_complete"),
			logging.String("title", outcome.Title),
			logging.String("target", filepath.Base(outcome.NewPath)),
			logging.Bool("fallback", outcome.Fallback),
		)
		logger.Info("file identified", logging.Args(attrs...)...)
	case StatusUnresolved:
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "credits may be missing or unreadable; try --use-search"),
			logging.String(logging.FieldImpact, "file left unrenamed"),
			logging.Bool("fallback", outcome.Fallback),
		)
		logging.WarnWithContext(logger, "title unresolved", "file_unresolved", attrs...)
	case StatusSkipped:
		attrs = append(attrs,
			logging.String("error_kind", outcome.Kind()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffmpeg and ffprobe can read the file"),
		)
		logging.WarnWithContext(logger, "file skipped", "file_skipped", attrs...)
	default:
		attrs = append(attrs,
			logging.String("error_kind", outcome.Kind()),
			logging.String("title", outcome.Title),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file left unrenamed"),
		)
		logging.ErrorWithContext(logger, "file failed", "file_failed", attrs...)
	}
	return outcome
}
