package identify

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"rollcall/internal/credits"
	"rollcall/internal/logging"
	"rollcall/internal/title"
)

// DefaultMaxNoUpdate is the number of consecutive unchanged productive
// guesses that ends sampling.
const DefaultMaxNoUpdate = 10

// Loop drives OCR and title refinement over the frames of one media file.
// A Loop holds no per-file state and may be reused sequentially.
type Loop struct {
	Filter    FrameFilter
	OCR       OCR
	Refiner   Refiner
	Escalator Escalator

	MaxNoUpdate    int
	ValuesPerLabel int
	Delay          time.Duration
	SearchFallback bool

	Logger *slog.Logger
	// Sleep waits between productive frames. Nil uses a context-aware timer.
	Sleep func(context.Context, time.Duration) error
}

// Result describes how a loop run ended.
type Result struct {
	State          State
	Stopped        State
	Guess          title.Guess
	View           credits.View
	Frames         int
	Filtered       int
	OCRCalls       int
	Productive     int
	RefineCalls    int
	FallbackCalled bool
}

// Title returns the resolved title, or empty when unresolved.
func (r Result) Title() string {
	if r.State != StateResolved {
		return ""
	}
	return r.Guess.String()
}

// Run processes frames in order and returns the terminal state. A cancelled
// context ends sampling early; the run still settles on Resolved or
// Unresolved without attempting the fallback.
func (l *Loop) Run(ctx context.Context, frames []string) Result {
	logger := l.Logger
	logger = logging.WithContext(ctx, logger)
	maxNoUpdate := l.MaxNoUpdate
	if maxNoUpdate <= 0 {
		maxNoUpdate = DefaultMaxNoUpdate
	}

	snapshot := credits.NewSnapshot()
	var (
		guess    title.Guess
		hasGuess bool
		noUpdate int
	)
	result := Result{State: StateSampling}

	for _, frame := range frames {
		if ctx.Err() != nil {
			break
		}
		result.Frames++

		if l.Filter != nil {
			ok, err := l.Filter.AcceptFile(frame)
			if err != nil {
				logger.Debug("frame unreadable",
					logging.String("frame", filepath.Base(frame)),
					logging.Error(err),
				)
			}
			if err != nil || !ok {
				result.Filtered++
				continue
			}
		}

		result.OCRCalls++
		extraction, err := l.OCR.ExtractCredits(ctx, frame)
		if err != nil {
			logger.Debug("ocr failed; skipping frame",
				logging.String("frame", filepath.Base(frame)),
				logging.Error(err),
			)
			continue
		}
		if extraction.Empty() {
			continue
		}
		result.Productive++
		snapshot.Merge(extraction)

		view := snapshot.Trim(l.ValuesPerLabel)
		previous := ""
		if hasGuess {
			previous = guess.String()
		}
		result.RefineCalls++
		raw, err := l.Refiner.RefineTitle(ctx, view, previous)
		if err != nil {
			logger.Debug("refine failed; treating as unknown",
				logging.String("frame", filepath.Base(frame)),
				logging.Error(err),
			)
			raw = ""
		}
		next := title.Normalize(raw)

		if hasGuess && next == guess && next.Known() {
			noUpdate++
		} else {
			guess, hasGuess = next, true
			noUpdate = 0
		}
		logger.Debug("guess refined",
			logging.String("frame", filepath.Base(frame)),
			logging.String("guess", guess.String()),
			logging.Int("no_update", noUpdate),
			logging.Int("labels", snapshot.Len()),
		)

		if noUpdate >= maxNoUpdate {
			result.Stopped = StateStableFound
			break
		}
		if err := l.sleep(ctx); err != nil {
			break
		}
	}
	if result.Stopped == StateSampling {
		result.Stopped = StateExhausted
	}

	result.View = snapshot.Trim(l.ValuesPerLabel)
	if !guess.Known() && l.SearchFallback && ctx.Err() == nil {
		guess, result.FallbackCalled = l.Escalator.Escalate(ctx, result.View)
	}
	result.Guess = guess
	if guess.Known() {
		result.State = StateResolved
	} else {
		result.State = StateUnresolved
	}
	return result
}

func (l *Loop) sleep(ctx context.Context) error {
	if l.Delay <= 0 {
		return nil
	}
	if l.Sleep != nil {
		return l.Sleep(ctx, l.Delay)
	}
	timer := time.NewTimer(l.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
