package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rollcall/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "rollcall", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	wantStaging := filepath.Join(tempHome, ".cache", "rollcall", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "rollcall", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.LLM.Provider != config.ProviderGemini || cfg.LLM.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Sampling.FPS != "1/3" || cfg.Refinement.MaxNoUpdate != 10 || cfg.Refinement.ValuesPerLabel != 12 {
		t.Fatalf("unexpected sampling/refinement defaults: %+v %+v", cfg.Sampling, cfg.Refinement)
	}
	if cfg.Refinement.SearchFallback {
		t.Fatal("expected search fallback disabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != ".mp4,.mkv,.avi,.mov" {
		t.Fatalf("unexpected extensions: %s", got)
	}
}

func TestLoadProjectConfigFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	content := "[refinement]\nmax_no_update = 4\n"
	if err := os.WriteFile(filepath.Join(dir, "rollcall.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "rollcall.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Refinement.MaxNoUpdate != 4 {
		t.Fatalf("max_no_update = %d, want 4", cfg.Refinement.MaxNoUpdate)
	}
}

func TestLoadOpenRouterDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[llm]\nprovider = \"OpenRouter\"\n\n[scan]\nextensions = [\"MKV\", \".mkv\", \" webm \"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Provider != config.ProviderOpenRouter {
		t.Fatalf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL == "" || cfg.LLM.Model != "google/gemini-2.5-flash" || cfg.LLM.Title != "RollCall" {
		t.Fatalf("unexpected openrouter defaults: %+v", cfg.LLM)
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != ".mkv,.webm" {
		t.Fatalf("extensions = %s", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"zero max no update", "[refinement]\nmax_no_update = 0\n", "refinement.max_no_update"},
		{"zero values per label", "[refinement]\nvalues_per_label = 0\n", "refinement.values_per_label"},
		{"zero token cap", "[refinement]\nocr_max_tokens = 0\n", "refinement.ocr_max_tokens"},
		{"negative delay", "[refinement]\nocr_delay_seconds = -1.0\n", "ocr_delay_seconds"},
		{"unknown provider", "[llm]\nprovider = \"bard\"\n", "llm.provider"},
		{"empty fps", "[sampling]\nfps = \" \"\n", "sampling.fps"},
		{"negative tail", "[sampling]\nlong_tail_seconds = -5.0\n", "sampling.long_tail_seconds"},
		{"negative threshold", "[sampling]\nvariation_threshold = -0.5\n", "sampling.variation_threshold"},
		{"unknown format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"empty extensions", "[scan]\nextensions = []\n", "scan.extensions"},
		{"unknown key", "[refinement]\nmystery = 1\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected second CreateSample to refuse overwriting")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	defaults := config.Default()
	if cfg.Refinement != defaults.Refinement || cfg.Sampling != defaults.Sampling {
		t.Fatalf("sample diverges from defaults: %+v %+v", cfg.Refinement, cfg.Sampling)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestResolveAPIKeyOrder(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := config.Default()

	key, source, err := cfg.ResolveAPIKey("flag-key")
	if err != nil || key != "flag-key" || source != config.KeySourceFlag {
		t.Fatalf("flag: key=%q source=%q err=%v", key, source, err)
	}

	cfg.LLM.APIKey = "config-key"
	key, source, _ = cfg.ResolveAPIKey("")
	if key != "config-key" || source != config.KeySourceConfig {
		t.Fatalf("config: key=%q source=%q", key, source)
	}

	cfg.LLM.APIKey = ""
	key, source, _ = cfg.ResolveAPIKey("")
	if key != "google-key" || source != "env:GOOGLE_API_KEY" {
		t.Fatalf("env fallback: key=%q source=%q", key, source)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	key, source, _ = cfg.ResolveAPIKey("")
	if key != "gemini-key" || source != "env:GEMINI_API_KEY" {
		t.Fatalf("env priority: key=%q source=%q", key, source)
	}

	cfg.LLM.Provider = config.ProviderOpenRouter
	_, _, err = cfg.ResolveAPIKey("")
	if !errors.Is(err, config.ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("error should name the env var: %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/media")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "media") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
