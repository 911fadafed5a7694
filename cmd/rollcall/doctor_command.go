package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rollcall/internal/deps"
	"rollcall/internal/preflight"
	"rollcall/internal/vision"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var checkAPI bool
	var apiKey string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories, and model credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprint(out, " (not found; using defaults)")
			}
			fmt.Fprintln(out)

			opts := preflight.Options{APIKeyFlag: apiKey}
			if checkAPI {
				if key, _, err := cfg.ResolveAPIKey(apiKey); err == nil {
					backend, err := vision.NewBackend(cmd.Context(), vision.ProviderConfig{
						Provider: cfg.LLM.Provider,
						APIKey:   key,
						BaseURL:  cfg.LLM.BaseURL,
						Model:    cfg.LLM.Model,
						Referer:  cfg.LLM.Referer,
						Title:    cfg.LLM.Title,
						Timeout:  cfg.LLMTimeout(),
					})
					if err != nil {
						return fmt.Errorf("create model backend: %w", err)
					}
					opts.Backend = backend
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, opts)
			rows := make([][]string, 0, len(results)+2)
			for _, r := range results {
				rows = append(rows, []string{r.Name, resultLabel(r), r.Detail})
			}
			for _, status := range deps.CheckBinaries(deps.MediaRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary())) {
				if !status.Available {
					continue
				}
				if version, err := deps.Version(cmd.Context(), status.Path); err == nil {
					rows = append(rows, []string{status.Name + " version", "info", version})
				}
			}
			fmt.Fprint(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("doctor found %d problem(s)", len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkAPI, "check-api", false, "Send a minimal request to confirm the API key")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the model provider")
	return cmd
}

func resultLabel(r preflight.Result) string {
	switch {
	case r.Passed:
		return "ok"
	case r.Optional:
		return "warn"
	default:
		return "fail"
	}
}
