package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"rollcall/internal/config"
	"rollcall/internal/deps"
	"rollcall/internal/vision"
)

// CheckLLM verifies that the model API is reachable and the key is valid.
// It uses a 30-second timeout.
func CheckLLM(ctx context.Context, name string, backend vision.Backend) Result {
	checker, ok := backend.(vision.HealthChecker)
	if !ok {
		return Result{Name: name, Optional: true, Detail: "health check unsupported"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", backend.Name())}
}

// CheckAPIKey reports whether an API key can be resolved and from where.
// The key itself never appears in the result.
func CheckAPIKey(cfg *config.Config, flagValue string) Result {
	const name = "API key"
	_, source, err := cfg.ResolveAPIKey(flagValue)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (from %s)", cfg.LLM.Provider, source)}
}

// CheckGrounding reports whether the configured provider can serve the
// search fallback. A provider without it simply skips the fallback.
func CheckGrounding(provider string) Result {
	const name = "Search fallback"
	if provider == config.ProviderGemini {
		return Result{Name: name, Passed: true, Optional: true, Detail: "google search grounding available"}
	}
	return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s has no search grounding; fallback will be skipped", provider)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinaries reports the ffmpeg and ffprobe binaries as preflight results.
func CheckBinaries(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.MediaRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		if status.Available {
			result.Detail = status.Path
		} else {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (model API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (model API unreachable)"
	}
	return err.Error()
}
