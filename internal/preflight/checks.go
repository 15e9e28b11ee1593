package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"narrator/internal/config"
	"narrator/internal/journal"
)

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

// CheckCredentials reports whether the selected engine has an API key.
func CheckCredentials(cfg *config.Config) Result {
	name := fmt.Sprintf("Engine %s", cfg.Synthesis.Engine)
	if strings.TrimSpace(cfg.Synthesis.APIKey) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("API key missing (set %s)", config.APIKeyEnv(cfg.Synthesis.Engine))}
	}
	detail := fmt.Sprintf("model %s, voice %s", cfg.Synthesis.Model, cfg.Synthesis.VoiceA)
	if cfg.Synthesis.Engine == config.EngineGemini {
		detail += "/" + cfg.Synthesis.VoiceB
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckJournal verifies the run history database opens with the expected schema.
func CheckJournal(ctx context.Context, path string) Result {
	const name = "Run journal"
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	store, err := journal.Open(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSegmentation verifies the chapter marker settings compile.
func CheckSegmentation(cfg *config.Config) Result {
	const name = "Chapter markers"
	policy, err := cfg.MarkerPolicy()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("locale %s (%s)", cfg.Segmentation.Locale, policy.Pattern)}
}

// CheckStrategy verifies the concatenation strategy name.
func CheckStrategy(strategy string) Result {
	const name = "Concat strategy"
	switch strategy {
	case config.StrategyAuto, config.StrategyNative, config.StrategyGoAudio:
		return Result{Name: name, Passed: true, Detail: strategy}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unsupported strategy %q", strategy)}
	}
}
