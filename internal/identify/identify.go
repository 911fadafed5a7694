package identify

import (
	"context"

	"rollcall/internal/credits"
)

// OCR extracts credit pairs from one frame image.
type OCR interface {
	ExtractCredits(ctx context.Context, framePath string) (credits.Extraction, error)
}

// Refiner infers a raw title string from a trimmed credits view. previous
// is the canonical text of the current guess, or empty when none exists.
type Refiner interface {
	RefineTitle(ctx context.Context, view credits.View, previous string) (string, error)
}

// SearchRefiner is the search-grounded collaborator used as a last resort.
type SearchRefiner interface {
	SupportsGrounding() bool
	SearchTitle(ctx context.Context, view credits.View) (string, error)
}

// FrameFilter decides whether a frame is worth an OCR call.
type FrameFilter interface {
	AcceptFile(path string) (bool, error)
}

// State is a refinement loop state.
type State int

const (
	StateSampling State = iota
	StateStableFound
	StateExhausted
	StateResolved
	StateUnresolved
)

func (s State) String() string {
	switch s {
	case StateSampling:
		return "sampling"
	case StateStableFound:
		return "stable_found"
	case StateExhausted:
		return "exhausted"
	case StateResolved:
		return "resolved"
	case StateUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}
