package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

type captured struct {
	paths  []string
	bodies []string
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, call int)) (*httptest.Server, *captured) {
	t.Helper()
	rec := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.paths = append(rec.paths, r.URL.Path)
		rec.bodies = append(rec.bodies, string(body))
		w.Header().Set("Content-Type", "application/json")
		handler(w, len(rec.paths))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func writeText(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: baseURL, Model: "test-model"}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	client, err := New(context.Background(), Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Model() != DefaultModel {
		t.Fatalf("Model = %q", client.Model())
	}
	if !client.SupportsGrounding() {
		t.Fatal("gemini client should support grounding")
	}
}

func TestGenerateWithSchemaAndImage(t *testing.T) {
	server, rec := newServer(t, func(w http.ResponseWriter, _ int) {
		writeText(w, `{"title":"Alpha (2001)"}`)
	})
	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), Request{
		Instruction: "identify",
		Payload:     `{"credits":{}}`,
		Image:       []byte{1, 2, 3},
		ImageMIME:   "image/png",
		Schema: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{"title": {Type: genai.TypeString}},
			Required:   []string{"title"},
		},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"title":"Alpha (2001)"}` {
		t.Fatalf("text = %q", text)
	}
	if len(rec.paths) != 1 || !strings.HasSuffix(rec.paths[0], "models/test-model:generateContent") {
		t.Fatalf("unexpected paths %v", rec.paths)
	}
	body := rec.bodies[0]
	for _, want := range []string{"inlineData", "responseMimeType", "responseSchema", "maxOutputTokens", "identify"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "googleSearch") {
		t.Fatalf("schema request should not attach search tool: %s", body)
	}
}

func TestGenerateGroundedDropsSchema(t *testing.T) {
	server, rec := newServer(t, func(w http.ResponseWriter, _ int) {
		writeText(w, "Casablanca (1942)\n")
	})
	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), Request{
		Instruction: "search",
		Payload:     `{"credits":{"Cast":["Humphrey Bogart"]}}`,
		Schema:      &genai.Schema{Type: genai.TypeObject},
		Grounded:    true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Casablanca (1942)" {
		t.Fatalf("text = %q", text)
	}
	body := rec.bodies[0]
	if !strings.Contains(body, "googleSearch") {
		t.Fatalf("grounded request missing search tool: %s", body)
	}
	if strings.Contains(body, "responseSchema") || strings.Contains(body, "responseMimeType") {
		t.Fatalf("grounded request must not carry a schema: %s", body)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	server, rec := newServer(t, func(w http.ResponseWriter, call int) {
		if call == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
			return
		}
		writeText(w, "ok")
	})
	var waits []time.Duration
	client := newTestClient(t, server.URL,
		WithRetry(3, time.Second, 4*time.Second),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}),
	)

	text, err := client.Generate(context.Background(), Request{Instruction: "ping"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "ok" || len(rec.paths) != 2 {
		t.Fatalf("text=%q calls=%d", text, len(rec.paths))
	}
	if len(waits) != 1 || waits[0] != time.Second {
		t.Fatalf("waits = %v", waits)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	server, rec := newServer(t, func(w http.ResponseWriter, _ int) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)
	})
	client := newTestClient(t, server.URL, WithSleeper(func(context.Context, time.Duration) error { return nil }))

	if _, err := client.Generate(context.Background(), Request{Instruction: "ping"}); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.paths) != 1 {
		t.Fatalf("calls = %d, want 1", len(rec.paths))
	}
}

func TestGenerateEmptyRequest(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	if _, err := client.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestBackoffCapsAtMax(t *testing.T) {
	c := &Client{base: time.Second, max: 3 * time.Second}
	got := []time.Duration{c.backoff(1), c.backoff(2), c.backoff(3)}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got[i], want[i])
		}
	}
}
