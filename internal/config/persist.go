package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"narrator/internal/fileutil"
)

// SynthesisDefaults holds the per-request settings that can be saved back to
// the configuration file. Empty fields leave the stored value untouched.
type SynthesisDefaults struct {
	Prompt string
	VoiceA string
	VoiceB string
}

func (d SynthesisDefaults) empty() bool {
	return strings.TrimSpace(d.Prompt) == "" && strings.TrimSpace(d.VoiceA) == "" && strings.TrimSpace(d.VoiceB) == ""
}

// SaveSynthesisDefaults merges defaults into the [synthesis] table of the TOML
// file at path, creating the file when absent. Other tables and keys are
// preserved; comments are not.
func SaveSynthesisDefaults(path string, defaults SynthesisDefaults) error {
	if defaults.empty() {
		return errors.New("no synthesis defaults provided")
	}

	document := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read config: %w", err)
	}

	synthesis, _ := document["synthesis"].(map[string]any)
	if synthesis == nil {
		synthesis = map[string]any{}
	}
	setIfPresent(synthesis, "prompt", defaults.Prompt)
	setIfPresent(synthesis, "voice_a", defaults.VoiceA)
	setIfPresent(synthesis, "voice_b", defaults.VoiceB)
	document["synthesis"] = synthesis

	encoded, err := toml.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setIfPresent(table map[string]any, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		table[key] = value
	}
}
