package preflight

import (
	"context"

	"rollcall/internal/config"
	"rollcall/internal/vision"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results are reported but never block a run.
	Optional bool
}

// Options tune RunAll.
type Options struct {
	// APIKeyFlag is the --api-key value, if any.
	APIKeyFlag string
	// Backend, when set, is asked to confirm the credentials.
	Backend vision.Backend
}

// RunAll executes the preflight checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckBinaries(cfg)...)
	results = append(results,
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckAPIKey(cfg, opts.APIKeyFlag),
	)
	if opts.Backend != nil {
		results = append(results, CheckLLM(ctx, "Model provider", opts.Backend))
	}
	if cfg.Refinement.SearchFallback {
		results = append(results, CheckGrounding(cfg.LLM.Provider))
	}
	return results
}

// Failed returns the non-optional results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
