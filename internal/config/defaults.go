package config

const (
	defaultConfigPath        = "~/.config/rollcall/config.toml"
	projectConfigName        = "rollcall.toml"
	defaultStagingDir        = "~/.cache/rollcall/staging"
	defaultStateDir          = "~/.local/share/rollcall"
	defaultFPS               = "1/3"
	defaultLongTailSeconds   = 210
	defaultShortTailSeconds  = 90
	defaultLongThreshold     = 3600
	defaultMaxNoUpdate       = 10
	defaultValuesPerLabel    = 12
	defaultOCRMaxTokens      = 256
	defaultRefineMaxTokens   = 64
	defaultProvider          = ProviderGemini
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultOpenRouterModel   = "google/gemini-2.5-flash"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterReferer = "https://github.com/rollcall/rollcall"
	defaultOpenRouterTitle   = "RollCall"
	defaultLLMTimeoutSeconds = 60
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Supported model providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

var defaultExtensions = []string{".mp4", ".mkv", ".avi", ".mov"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Sampling: Sampling{
			FPS:                       defaultFPS,
			LongTailSeconds:           defaultLongTailSeconds,
			ShortTailSeconds:          defaultShortTailSeconds,
			LongVideoThresholdSeconds: defaultLongThreshold,
		},
		Refinement: Refinement{
			MaxNoUpdate:     defaultMaxNoUpdate,
			ValuesPerLabel:  defaultValuesPerLabel,
			OCRMaxTokens:    defaultOCRMaxTokens,
			RefineMaxTokens: defaultRefineMaxTokens,
		},
		LLM: LLM{
			Provider:       defaultProvider,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenRouter {
		return defaultOpenRouterModel
	}
	return defaultGeminiModel
}
