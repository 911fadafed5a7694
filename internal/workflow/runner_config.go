package workflow

import (
	"log/slog"

	"rollcall/internal/config"
	"rollcall/internal/framefilter"
	"rollcall/internal/identify"
	"rollcall/internal/logging"
	"rollcall/internal/organizer"
	"rollcall/internal/sampling"
	"rollcall/internal/vision"
)

// Options carries per-invocation collaborators that are not part of the
// config file.
type Options struct {
	DryRun  bool
	Backend vision.Backend
	// History may be nil to disable recording.
	History Recorder
	Logger  *slog.Logger
}

// NewRunner wires a Runner from configuration.
func NewRunner(cfg *config.Config, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	service := &vision.Service{
		Backend:         opts.Backend,
		OCRMaxTokens:    cfg.Refinement.OCRMaxTokens,
		RefineMaxTokens: cfg.Refinement.RefineMaxTokens,
		Logger:          logging.NewComponentLogger(logger, "vision"),
	}
	loop := &identify.Loop{
		Filter:  framefilter.Filter{Threshold: cfg.Sampling.VariationThreshold},
		OCR:     service,
		Refiner: service,
		Escalator: identify.Escalator{
			Search: service,
			Logger: logging.NewComponentLogger(logger, "fallback"),
		},
		MaxNoUpdate:    cfg.Refinement.MaxNoUpdate,
		ValuesPerLabel: cfg.Refinement.ValuesPerLabel,
		Delay:          cfg.OCRDelay(),
		SearchFallback: cfg.Refinement.SearchFallback,
		Logger:         logging.NewComponentLogger(logger, "identify"),
	}

	backendName := cfg.LLM.Provider
	if opts.Backend != nil {
		backendName = opts.Backend.Name()
	}

	return &Runner{
		Extensions:  cfg.Scan.Extensions,
		StagingRoot: cfg.Paths.StagingDir,
		LockDir:     cfg.LockDir(),
		DryRun:      opts.DryRun,
		Provider:    backendName,
		Model:       cfg.LLM.Model,
		Policy: sampling.Policy{
			LongTail:      cfg.Sampling.LongTailSeconds,
			ShortTail:     cfg.Sampling.ShortTailSeconds,
			LongThreshold: cfg.Sampling.LongVideoThresholdSeconds,
			FPS:           cfg.Sampling.FPS,
		},
		Prober:     FFprobe{Binary: cfg.FFprobeBinary()},
		Frames:     FFmpeg{Binary: cfg.FFmpegBinary()},
		Identifier: loop,
		Renamer: organizer.Renamer{
			DryRun: opts.DryRun,
			Logger: logging.NewComponentLogger(logger, "organizer"),
		},
		History: opts.History,
		Logger:  logger,
	}
}
