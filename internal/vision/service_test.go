package vision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rollcall/internal/credits"
)

type fakeBackend struct {
	answers   []string
	err       error
	grounding bool
	calls     []Call
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) SupportsGrounding() bool { return f.grounding }

func (f *fakeBackend) Generate(_ context.Context, call Call) (string, error) {
	f.calls = append(f.calls, call)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "", nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

func writeFrame(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("image-bytes"), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

func TestExtractCreditsParsesAndNormalizes(t *testing.T) {
	backend := &fakeBackend{answers: []string{"```json\n{\"entries\":[{\"key\":\"Cast\",\"values\":[\"Ann Lee, Bo Chen\"]}]}\n```"}}
	svc := &Service{Backend: backend}
	frame := writeFrame(t, "frame_00001.png")

	got, err := svc.ExtractCredits(context.Background(), frame)
	if err != nil {
		t.Fatalf("ExtractCredits: %v", err)
	}
	if len(got.Entries) != 1 || len(got.Entries[0].Values) != 2 {
		t.Fatalf("extraction = %#v", got)
	}
	call := backend.calls[0]
	if call.ImageMIME != "image/png" || string(call.Image) != "image-bytes" {
		t.Fatalf("image not forwarded: %q %q", call.ImageMIME, call.Image)
	}
	if call.Schema != pairSchema || call.MaxTokens != DefaultOCRMaxTokens || call.Grounded {
		t.Fatalf("unexpected call shape: %+v", call)
	}
	if !strings.Contains(call.Instruction, `use the key "text"`) {
		t.Fatalf("prompt missing fallback key: %s", call.Instruction)
	}
}

func TestExtractCreditsUnparseableIsEmpty(t *testing.T) {
	svc := &Service{Backend: &fakeBackend{answers: []string{"I cannot read this"}}, OCRMaxTokens: 100}
	got, err := svc.ExtractCredits(context.Background(), writeFrame(t, "frame.jpg"))
	if err != nil {
		t.Fatalf("ExtractCredits: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty extraction, got %#v", got)
	}
}

func TestExtractCreditsErrors(t *testing.T) {
	svc := &Service{Backend: &fakeBackend{err: errors.New("boom")}}
	if _, err := svc.ExtractCredits(context.Background(), writeFrame(t, "f.png")); err == nil {
		t.Fatal("expected backend error")
	}
	if _, err := svc.ExtractCredits(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestRefineTitle(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		previous string
		want     string
	}{
		{"film", `{"title":"Alpha (2001)"}`, "", "Alpha (2001)"},
		{"with previous", `{"title":"Show_S01E02"}`, "Show", "Show_S01E02"},
		{"unparseable", `not json`, "", "UNKNOWN_TITLE"},
		{"missing field", `{"name":"x"}`, "", "UNKNOWN_TITLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{answers: []string{tt.answer}}
			svc := &Service{Backend: backend}
			got, err := svc.RefineTitle(context.Background(), credits.View{"Cast": {"A"}}, tt.previous)
			if err != nil {
				t.Fatalf("RefineTitle: %v", err)
			}
			if got != tt.want {
				t.Fatalf("RefineTitle = %q, want %q", got, tt.want)
			}
			call := backend.calls[0]
			hasPrevious := strings.Contains(call.Instruction, "Previous guess: ")
			if hasPrevious != (tt.previous != "") {
				t.Fatalf("previous hint mismatch in %q", call.Instruction)
			}
			if call.Payload != `{"credits":{"Cast":["A"]}}` {
				t.Fatalf("payload = %s", call.Payload)
			}
			if call.Schema != titleSchema || call.MaxTokens != DefaultRefineMaxTokens {
				t.Fatalf("unexpected call: %+v", call)
			}
		})
	}
}

func TestRefineTitleTransportError(t *testing.T) {
	svc := &Service{Backend: &fakeBackend{err: errors.New("timeout")}}
	if _, err := svc.RefineTitle(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchTitle(t *testing.T) {
	backend := &fakeBackend{answers: []string{"  Casablanca (1942)\n"}, grounding: true}
	svc := &Service{Backend: backend, RefineMaxTokens: 48}
	if !svc.SupportsGrounding() {
		t.Fatal("expected grounding support")
	}
	got, err := svc.SearchTitle(context.Background(), credits.View{"Cast": {"Humphrey Bogart"}})
	if err != nil {
		t.Fatalf("SearchTitle: %v", err)
	}
	if got != "Casablanca (1942)" {
		t.Fatalf("SearchTitle = %q", got)
	}
	call := backend.calls[0]
	if !call.Grounded || call.Schema != nil || call.MaxTokens != 48 {
		t.Fatalf("unexpected call: %+v", call)
	}
	if !strings.Contains(call.Instruction, "UNKNOWN_TITLE") {
		t.Fatalf("instruction missing sentinel: %s", call.Instruction)
	}
}

func TestSupportsGroundingWithoutBackend(t *testing.T) {
	if (&Service{}).SupportsGrounding() {
		t.Fatal("nil backend cannot ground")
	}
	if (&Service{Backend: &fakeBackend{}}).SupportsGrounding() {
		t.Fatal("backend without grounding reported support")
	}
}
