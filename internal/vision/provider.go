package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rollcall/internal/services/gemini"
	"rollcall/internal/services/llm"
)

// Provider names accepted by NewBackend.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Referer  string
	Title    string
	Timeout  time.Duration
}

// HealthChecker is implemented by backends that can verify credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewBackend constructs the backend for cfg.Provider.
func NewBackend(ctx context.Context, cfg ProviderConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewGeminiBackend(client), nil
	case ProviderOpenRouter:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("vision: openrouter api key required")
		}
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: int(cfg.Timeout / time.Second),
		})
		return NewOpenRouterBackend(client), nil
	default:
		return nil, fmt.Errorf("vision: unknown provider %q", cfg.Provider)
	}
}
