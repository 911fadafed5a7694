package vision

import (
	"context"
	"errors"
	"strings"

	"rollcall/internal/services/gemini"
	"rollcall/internal/services/llm"
)

// ErrGroundingUnsupported is returned for grounded calls on a backend
// without a search tool.
var ErrGroundingUnsupported = errors.New("vision: backend does not support search grounding")

// Call is one model request as built by Service.
type Call struct {
	Instruction string
	Payload     string
	Image       []byte
	ImageMIME   string
	Schema      *Schema
	MaxTokens   int
	Grounded    bool
}

// Backend sends a Call to a model provider and returns its text answer.
type Backend interface {
	Name() string
	Generate(ctx context.Context, call Call) (string, error)
	SupportsGrounding() bool
}

type geminiGenerator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
	SupportsGrounding() bool
}

// GeminiBackend adapts a gemini client.
type GeminiBackend struct {
	client geminiGenerator
}

// NewGeminiBackend wraps client.
func NewGeminiBackend(client *gemini.Client) *GeminiBackend {
	return &GeminiBackend{client: client}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) SupportsGrounding() bool {
	return b.client != nil && b.client.SupportsGrounding()
}

func (b *GeminiBackend) Generate(ctx context.Context, call Call) (string, error) {
	if b.client == nil {
		return "", errors.New("vision: gemini client not configured")
	}
	return b.client.Generate(ctx, gemini.Request{
		Instruction: call.Instruction,
		Payload:     call.Payload,
		Image:       call.Image,
		ImageMIME:   call.ImageMIME,
		Schema:      call.Schema.Genai(),
		MaxTokens:   int32(call.MaxTokens),
		Grounded:    call.Grounded,
	})
}

type chatCompleter interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// OpenRouterBackend adapts an OpenRouter chat completions client. It has no
// search tool, so grounded calls fail with ErrGroundingUnsupported.
type OpenRouterBackend struct {
	client chatCompleter
}

// NewOpenRouterBackend wraps client.
func NewOpenRouterBackend(client *llm.Client) *OpenRouterBackend {
	return &OpenRouterBackend{client: client}
}

func (b *OpenRouterBackend) Name() string { return "openrouter" }

func (b *OpenRouterBackend) SupportsGrounding() bool { return false }

func (b *OpenRouterBackend) Generate(ctx context.Context, call Call) (string, error) {
	if call.Grounded {
		return "", ErrGroundingUnsupported
	}
	if b.client == nil {
		return "", errors.New("vision: openrouter client not configured")
	}
	prompt := strings.TrimSpace(call.Instruction)
	if payload := strings.TrimSpace(call.Payload); payload != "" {
		prompt += "\n\n" + payload
	}
	req := llm.Request{
		Prompt:    prompt,
		Image:     call.Image,
		ImageMIME: call.ImageMIME,
		MaxTokens: call.MaxTokens,
	}
	if call.Schema != nil {
		req.Schema = call.Schema.JSONSchema()
		req.SchemaName = call.Schema.Name
	}
	content, err := b.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// HealthCheck issues a minimal request through the gemini client.
func (b *GeminiBackend) HealthCheck(ctx context.Context) error {
	checker, ok := b.client.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return errors.New("vision: gemini client not configured")
	}
	return checker.HealthCheck(ctx)
}

// HealthCheck issues a minimal request through the chat client.
func (b *OpenRouterBackend) HealthCheck(ctx context.Context) error {
	checker, ok := b.client.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return errors.New("vision: openrouter client not configured")
	}
	return checker.HealthCheck(ctx)
}
