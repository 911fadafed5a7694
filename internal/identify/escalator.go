package identify

import (
	"context"
	"log/slog"

	"rollcall/internal/credits"
	"rollcall/internal/logging"
	"rollcall/internal/title"
)

// Escalator issues the single search-grounded call made when local
// refinement ends without a usable title.
type Escalator struct {
	Search SearchRefiner
	Logger *slog.Logger
}

// Escalate returns the normalized fallback guess and whether a call was
// made. Without grounding support it returns Unknown immediately.
func (e Escalator) Escalate(ctx context.Context, view credits.View) (title.Guess, bool) {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if e.Search == nil || !e.Search.SupportsGrounding() {
		logger.Debug("search fallback unavailable",
			logging.String(logging.FieldEventType, "fallback_unavailable"),
		)
		return title.Guess{}, false
	}
	raw, err := e.Search.SearchTitle(ctx, view)
	if err != nil {
		logging.WarnWithContext(logger, "search fallback failed", "fallback_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check API quota and network access"),
			logging.String(logging.FieldImpact, "file left unresolved"),
		)
		return title.Guess{}, true
	}
	guess := title.Normalize(raw)
	logger.Info("search fallback answered",
		logging.String(logging.FieldEventType, "fallback_answer"),
		logging.String("raw", raw),
		logging.String("title", guess.String()),
	)
	return guess, true
}
