package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rollcall/internal/config"
	"rollcall/internal/history"
	"rollcall/internal/logging"
	"rollcall/internal/preflight"
	"rollcall/internal/vision"
	"rollcall/internal/workflow"
)

type runFlags struct {
	dryRun             bool
	quiet              bool
	verbose            bool
	fps                string
	variationThreshold float64
	ocrDelay           float64
	longTail           float64
	shortTail          float64
	maxNoUpdate        int
	valuesPerLabel     int
	model              string
	provider           string
	ocrMaxTokens       int
	refineMaxTokens    int
	useSearch          bool
	apiKey             string
	noHistory          bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <directory>",
		Short: "Identify and rename every video in a directory",
		Long: `Identify each video in the directory from its closing credits and rename
it to the title found.

Frames are sampled from the end of each file, read by a vision model, and
refined into a title until the guess stops changing. Files whose title cannot
be determined are left untouched. Use --dry-run to see the planned renames
without changing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if err := applyRunOverrides(cmd.Flags(), &cfg, flags); err != nil {
				return err
			}
			return executeRun(cmd, &cfg, flags, args[0])
		},
	}

	bindRunFlags(cmd.Flags(), &flags)
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	return cmd
}

func bindRunFlags(f *pflag.FlagSet, flags *runFlags) {
	f.BoolVar(&flags.dryRun, "dry-run", false, "Report planned renames without renaming")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log errors and skip the summary table")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every frame and guess")
	f.StringVar(&flags.fps, "fps", "", "ffmpeg fps expression for sampling (e.g. 1/3)")
	f.Float64Var(&flags.variationThreshold, "variation-threshold", 0, "Grayscale spread a frame must exceed to be read")
	f.Float64Var(&flags.ocrDelay, "ocr-delay", 0, "Seconds to wait between productive frames")
	f.Float64Var(&flags.longTail, "long-tail-sec", 0, "Seconds sampled from the end of videos over an hour")
	f.Float64Var(&flags.shortTail, "short-tail-sec", 0, "Seconds sampled from the end of shorter videos")
	f.IntVar(&flags.maxNoUpdate, "max-no-update", 0, "Unchanged guesses needed to stop sampling")
	f.IntVar(&flags.valuesPerLabel, "values-per-label", 0, "Credit values kept per label for title refinement")
	f.StringVar(&flags.model, "model", "", "Model name")
	f.StringVar(&flags.provider, "provider", "", "Model provider (gemini or openrouter)")
	f.IntVar(&flags.ocrMaxTokens, "ocr-max-tokens", 0, "Output token cap for credit reading")
	f.IntVar(&flags.refineMaxTokens, "refine-max-tokens", 0, "Output token cap for title refinement")
	f.BoolVar(&flags.useSearch, "use-search", false, "Ask a search-grounded model once when no title is found")
	f.StringVar(&flags.apiKey, "api-key", "", "API key for the model provider")
	f.BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history database")
}

// applyRunOverrides copies explicitly set flags onto cfg and revalidates.
func applyRunOverrides(set *pflag.FlagSet, cfg *config.Config, flags runFlags) error {
	if set.Changed("fps") {
		cfg.Sampling.FPS = strings.TrimSpace(flags.fps)
	}
	if set.Changed("variation-threshold") {
		cfg.Sampling.VariationThreshold = flags.variationThreshold
	}
	if set.Changed("ocr-delay") {
		cfg.Refinement.OCRDelaySeconds = flags.ocrDelay
	}
	if set.Changed("long-tail-sec") {
		cfg.Sampling.LongTailSeconds = flags.longTail
	}
	if set.Changed("short-tail-sec") {
		cfg.Sampling.ShortTailSeconds = flags.shortTail
	}
	if set.Changed("max-no-update") {
		cfg.Refinement.MaxNoUpdate = flags.maxNoUpdate
	}
	if set.Changed("values-per-label") {
		cfg.Refinement.ValuesPerLabel = flags.valuesPerLabel
	}
	if set.Changed("provider") {
		provider := strings.ToLower(strings.TrimSpace(flags.provider))
		if provider != cfg.LLM.Provider {
			// Provider-specific endpoint and model defaults do not carry over.
			cfg.LLM.BaseURL = ""
			if !set.Changed("model") {
				cfg.LLM.Model = config.DefaultModel(provider)
			}
		}
		cfg.LLM.Provider = provider
	}
	if set.Changed("model") {
		cfg.LLM.Model = strings.TrimSpace(flags.model)
	}
	if set.Changed("ocr-max-tokens") {
		cfg.Refinement.OCRMaxTokens = flags.ocrMaxTokens
	}
	if set.Changed("refine-max-tokens") {
		cfg.Refinement.RefineMaxTokens = flags.refineMaxTokens
	}
	if set.Changed("use-search") {
		cfg.Refinement.SearchFallback = flags.useSearch
	}
	if flags.noHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func executeRun(cmd *cobra.Command, cfg *config.Config, flags runFlags, dir string) error {
	ctx := cmd.Context()
	logger, err := newLogger(cfg, cmd.ErrOrStderr(), flags.quiet, flags.verbose)
	if err != nil {
		return err
	}

	apiKey, source, err := cfg.ResolveAPIKey(flags.apiKey)
	if err != nil {
		return err
	}
	logger.Info("api key resolved",
		logging.String("provider", cfg.LLM.Provider),
		logging.String("source", string(source)),
	)

	if failed := preflight.Failed(append(
		preflight.CheckBinaries(cfg),
		preflight.CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	)); len(failed) > 0 {
		return preflightError(failed)
	}

	backend, err := vision.NewBackend(ctx, vision.ProviderConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   apiKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Referer:  cfg.LLM.Referer,
		Title:    cfg.LLM.Title,
		Timeout:  cfg.LLMTimeout(),
	})
	if err != nil {
		return fmt.Errorf("create model backend: %w", err)
	}
	if cfg.Refinement.SearchFallback && !backend.SupportsGrounding() {
		logging.WarnWithContext(logger, "search fallback unavailable for provider", "fallback_unavailable",
			logging.String("provider", backend.Name()),
			logging.String(logging.FieldErrorHint, "use --provider gemini for search-grounded fallback"),
			logging.String(logging.FieldImpact, "unresolved files stay unresolved"),
		)
	}

	opts := workflow.Options{
		DryRun:  flags.dryRun,
		Backend: backend,
		Logger:  logger,
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run not recorded in history"),
			)
		} else {
			defer store.Close()
			opts.History = store
		}
	}

	summary, runErr := workflow.NewRunner(cfg, opts).Run(ctx, dir)
	if !flags.quiet && len(summary.Outcomes) > 0 {
		fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
	}
	return runErr
}

func preflightError(failed []preflight.Result) error {
	lines := make([]string, 0, len(failed))
	for _, r := range failed {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return errors.New("preflight failed:\n  " + strings.Join(lines, "\n  "))
}
