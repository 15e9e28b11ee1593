package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"narrator/internal/segment"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Synthesis contains engine selection and per-request defaults.
type Synthesis struct {
	Engine         string `toml:"engine"`
	Model          string `toml:"model"`
	Prompt         string `toml:"prompt"`
	VoiceA         string `toml:"voice_a"`
	VoiceB         string `toml:"voice_b"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SkipExisting   bool   `toml:"skip_existing"`
}

// Segmentation controls how documents are split into chapters.
type Segmentation struct {
	Locale             string `toml:"locale"`
	MarkerPattern      string `toml:"marker_pattern"`
	PrefaceTitle       string `toml:"preface_title"`
	WholeDocumentTitle string `toml:"whole_document_title"`
	LongBlockThreshold int    `toml:"long_block_threshold"`
}

// Concat controls chapter concatenation.
type Concat struct {
	PauseSeconds float64 `toml:"pause_seconds"`
	Strategy     string  `toml:"strategy"`
}

// Journal controls the run history database.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for narrator.
//
// Configuration sections by subsystem:
//   - Paths: chapter audio output and state directories
//   - Synthesis: engine, model, prompt and voices
//   - Segmentation: chapter heading policy and paragraph splitting
//   - Concat: pause length and concatenation strategy
//   - Journal: run history database
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Synthesis    Synthesis    `toml:"synthesis"`
	Segmentation Segmentation `toml:"segmentation"`
	Concat       Concat       `toml:"concat"`
	Journal      Journal      `toml:"journal"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the location of the run history database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "narrator.db")
}

// SynthesisTimeout returns the per-request engine timeout, zero meaning none.
func (c *Config) SynthesisTimeout() time.Duration {
	return time.Duration(c.Synthesis.TimeoutSeconds) * time.Second
}

// MarkerPolicy builds the chapter heading policy selected by the segmentation section.
func (c *Config) MarkerPolicy() (segment.MarkerPolicy, error) {
	if c.Segmentation.Locale != segment.LocaleCustom {
		policy, err := segment.Preset(c.Segmentation.Locale)
		if err != nil {
			return segment.MarkerPolicy{}, err
		}
		if title := strings.TrimSpace(c.Segmentation.PrefaceTitle); title != "" {
			policy.PrefaceTitle = title
		}
		if title := strings.TrimSpace(c.Segmentation.WholeDocumentTitle); title != "" {
			policy.WholeDocumentTitle = title
		}
		return policy, nil
	}
	return segment.NewMarkerPolicy(c.Segmentation.MarkerPattern, c.Segmentation.PrefaceTitle, c.Segmentation.WholeDocumentTitle)
}

// Segmenter builds a segmenter from the segmentation section.
func (c *Config) Segmenter() (*segment.Segmenter, error) {
	policy, err := c.MarkerPolicy()
	if err != nil {
		return nil, err
	}
	return segment.New(policy, segment.WithLongBlockThreshold(c.Segmentation.LongBlockThreshold)), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
