package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const (
	defaultTimeout        = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 8 * time.Second
)

// Config controls the Gemini client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint. Used by tests.
	BaseURL string
	Timeout time.Duration
}

// Client issues generateContent calls against the Gemini API.
type Client struct {
	api      *genai.Client
	model    string
	attempts int
	base     time.Duration
	max      time.Duration
	sleeper  func(context.Context, time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry overrides the retry attempt count and backoff bounds.
func WithRetry(attempts int, base, max time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.base = base
		c.max = max
	}
}

// WithSleeper replaces the backoff wait. Tests use it to avoid real delays.
func WithSleeper(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleeper = fn
		}
	}
}

// New constructs a Gemini client. The API key is required; the SDK's own
// environment lookup is not relied on.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gemini: api key required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	gc, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		api:      gc,
		model:    model,
		attempts: defaultRetryAttempts,
		base:     defaultRetryBaseDelay,
		max:      defaultRetryMaxDelay,
		sleeper:  sleepContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Model reports the configured model name.
func (c *Client) Model() string { return c.model }

// SupportsGrounding reports whether Grounded requests are honoured.
func (c *Client) SupportsGrounding() bool { return true }

// Request describes one generateContent call. Contents are sent in order:
// image (when present), instruction, payload.
type Request struct {
	Instruction string
	Payload     string
	Image       []byte
	ImageMIME   string
	// Schema requests application/json output. Ignored when Grounded is set
	// because the API rejects response schemas combined with tools.
	Schema    *genai.Schema
	MaxTokens int32
	Grounded  bool
}

// Generate runs the request and returns the concatenated response text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, 3)
	if len(req.Image) > 0 {
		mime := strings.TrimSpace(req.ImageMIME)
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mime))
	}
	if text := strings.TrimSpace(req.Instruction); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	if text := strings.TrimSpace(req.Payload); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	if len(parts) == 0 {
		return "", errors.New("gemini generate: empty request")
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		TopP:            genai.Ptr[float32](1),
		TopK:            genai.Ptr[float32](1),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Grounded {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	attempts := c.attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, config)
		if err == nil {
			return strings.TrimSpace(resp.Text()), nil
		}
		lastErr = err
		if attempt == attempts || !retryable(err) || ctx.Err() != nil {
			break
		}
		if err := c.sleeper(ctx, c.backoff(attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("gemini generate: %w", lastErr)
}

// HealthCheck issues a minimal request to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Generate(ctx, Request{Instruction: "Reply with the single word OK.", MaxTokens: 8})
	if err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if c.max > 0 && delay >= c.max {
			return c.max
		}
	}
	if c.max > 0 && delay > c.max {
		return c.max
	}
	return delay
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := apiErrorCode(err)
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
