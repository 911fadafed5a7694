package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateSampling(); err != nil {
		return err
	}
	if err := c.validateRefinement(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateSampling() error {
	if c.Sampling.FPS == "" {
		return errors.New("sampling.fps must be set")
	}
	return ensureNonNegative(map[string]float64{
		"sampling.long_tail_seconds":            c.Sampling.LongTailSeconds,
		"sampling.short_tail_seconds":           c.Sampling.ShortTailSeconds,
		"sampling.long_video_threshold_seconds": c.Sampling.LongVideoThresholdSeconds,
		"sampling.variation_threshold":          c.Sampling.VariationThreshold,
	})
}

func (c *Config) validateRefinement() error {
	if err := ensurePositive(map[string]int{
		"refinement.max_no_update":     c.Refinement.MaxNoUpdate,
		"refinement.values_per_label":  c.Refinement.ValuesPerLabel,
		"refinement.ocr_max_tokens":    c.Refinement.OCRMaxTokens,
		"refinement.refine_max_tokens": c.Refinement.RefineMaxTokens,
	}); err != nil {
		return err
	}
	if c.Refinement.OCRDelaySeconds < 0 {
		return errors.New("refinement.ocr_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenRouter, c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositive(values map[string]int) error {
	for _, key := range sortedKeys(values) {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func ensureNonNegative(values map[string]float64) error {
	for _, key := range sortedKeys(values) {
		if values[key] < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
