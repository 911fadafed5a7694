// Package config loads and validates RollCall configuration.
//
// Configuration is TOML. Load looks at an explicit path first, then
// ~/.config/rollcall/config.toml, then ./rollcall.toml, and falls back to
// Default when none exists. Values are normalized (paths expanded,
// provider-specific defaults filled in) before Validate runs. API keys are
// resolved separately by ResolveAPIKey so commands that never call a model
// work without one.
package config
