package vision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rollcall/internal/credits"
	"rollcall/internal/logging"
	"rollcall/internal/services/llm"
	"rollcall/internal/title"
)

// Default token caps.
const (
	DefaultOCRMaxTokens    = 256
	DefaultRefineMaxTokens = 64
)

// Service implements credits OCR, title refinement, and search-grounded
// identification on top of a Backend.
type Service struct {
	Backend         Backend
	OCRMaxTokens    int
	RefineMaxTokens int
	// FallbackLabel names unlabeled name blocks. Empty uses "text".
	FallbackLabel string
	Logger        *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}

// ExtractCredits reads one frame and returns the label→values pairs the
// model found. An answer that cannot be parsed yields an empty extraction;
// transport failures are returned.
func (s *Service) ExtractCredits(ctx context.Context, path string) (credits.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return credits.Extraction{}, fmt.Errorf("read frame: %w", err)
	}
	fallback := s.FallbackLabel
	if fallback == "" {
		fallback = FallbackLabel
	}
	content, err := s.Backend.Generate(ctx, Call{
		Instruction: ocrPrompt(fallback),
		Image:       data,
		ImageMIME:   imageMIME(path),
		Schema:      pairSchema,
		MaxTokens:   positiveOr(s.OCRMaxTokens, DefaultOCRMaxTokens),
	})
	if err != nil {
		return credits.Extraction{}, fmt.Errorf("ocr %s: %w", filepath.Base(path), err)
	}
	var resp pairResponse
	if err := llm.DecodeLLMJSON(content, &resp); err != nil {
		s.logger().Debug("ocr response unparseable",
			logging.String("frame", filepath.Base(path)),
			logging.Error(err),
		)
		return credits.Extraction{}, nil
	}
	return normalizePairs(resp), nil
}

// RefineTitle asks the model for a title given the trimmed credits view and
// the previous guess. Unparseable answers yield the unknown sentinel.
func (s *Service) RefineTitle(ctx context.Context, view credits.View, previous string) (string, error) {
	payload, err := creditsPayload(view)
	if err != nil {
		return "", fmt.Errorf("encode credits: %w", err)
	}
	content, err := s.Backend.Generate(ctx, Call{
		Instruction: refinePrompt(previous),
		Payload:     payload,
		Schema:      titleSchema,
		MaxTokens:   positiveOr(s.RefineMaxTokens, DefaultRefineMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("refine title: %w", err)
	}
	var resp struct {
		Title *string `json:"title"`
	}
	if err := llm.DecodeLLMJSON(content, &resp); err != nil || resp.Title == nil {
		s.logger().Debug("refine response unparseable",
			logging.String("content", content),
		)
		return title.UnknownText, nil
	}
	return *resp.Title, nil
}

// SupportsGrounding reports whether SearchTitle can reach a search tool.
func (s *Service) SupportsGrounding() bool {
	return s.Backend != nil && s.Backend.SupportsGrounding()
}

// SearchTitle makes a single grounded request and returns the raw line the
// model answered with.
func (s *Service) SearchTitle(ctx context.Context, view credits.View) (string, error) {
	payload, err := creditsPayload(view)
	if err != nil {
		return "", fmt.Errorf("encode credits: %w", err)
	}
	content, err := s.Backend.Generate(ctx, Call{
		Instruction: searchInstruction,
		Payload:     payload,
		MaxTokens:   positiveOr(s.RefineMaxTokens, DefaultRefineMaxTokens),
		Grounded:    true,
	})
	if err != nil {
		return "", fmt.Errorf("search title: %w", err)
	}
	return strings.TrimSpace(content), nil
}

func imageMIME(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
