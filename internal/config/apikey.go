package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrAPIKeyMissing is returned when no source supplies an API key.
var ErrAPIKeyMissing = errors.New("api key not configured")

// KeySource names where an API key was found. It never holds the key.
type KeySource string

// Key sources in lookup order.
const (
	KeySourceFlag   KeySource = "flag"
	KeySourceConfig KeySource = "config"
)

// envKeys lists the environment variables consulted per provider, in order.
var envKeys = map[string][]string{
	ProviderGemini:     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	ProviderOpenRouter: {"OPENROUTER_API_KEY"},
}

// APIKeyEnvVars returns the environment variables consulted for provider.
func APIKeyEnvVars(provider string) []string {
	return append([]string(nil), envKeys[provider]...)
}

// ResolveAPIKey returns the first non-empty key from: the explicit flag
// value, llm.api_key, then the provider's environment variables.
func (c *Config) ResolveAPIKey(flagValue string) (string, KeySource, error) {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key, KeySourceFlag, nil
	}
	if key := strings.TrimSpace(c.LLM.APIKey); key != "" {
		return key, KeySourceConfig, nil
	}
	for _, name := range envKeys[c.LLM.Provider] {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, KeySource("env:" + name), nil
		}
	}
	return "", "", fmt.Errorf("%w for provider %s: pass --api-key, set llm.api_key, or export %s",
		ErrAPIKeyMissing, c.LLM.Provider, strings.Join(envKeys[c.LLM.Provider], " or "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
