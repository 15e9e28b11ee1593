package config

import (
	"errors"
	"fmt"
	"strings"

	"narrator/internal/logging"
	"narrator/internal/segment"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateConcat(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireCredentials reports an error when the selected engine has no API key.
// Commands that never call an engine skip this check.
func (c *Config) RequireCredentials() error {
	if c.Synthesis.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("synthesis.api_key is required for engine %q. Set %s env var or edit %s (create with 'narrator config init')",
		c.Synthesis.Engine, apiKeyEnv(c.Synthesis.Engine), defaultPath)
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	switch c.Synthesis.Engine {
	case EngineGemini, EngineOpenAI:
	default:
		return fmt.Errorf("synthesis.engine: unsupported value %q (want %s or %s)", c.Synthesis.Engine, EngineGemini, EngineOpenAI)
	}
	if c.Synthesis.VoiceA == "" {
		return errors.New("synthesis.voice_a must be set")
	}
	if c.Synthesis.Engine == EngineGemini && c.Synthesis.VoiceB == "" {
		return errors.New("synthesis.voice_b must be set for the gemini engine")
	}
	if c.Synthesis.TimeoutSeconds < 0 {
		return errors.New("synthesis.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.LongBlockThreshold < 0 {
		return errors.New("segmentation.long_block_threshold must be positive")
	}
	if c.Segmentation.Locale == segment.LocaleCustom && strings.TrimSpace(c.Segmentation.MarkerPattern) == "" {
		return errors.New("segmentation.marker_pattern is required when locale is custom")
	}
	if _, err := c.MarkerPolicy(); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}
	return nil
}

func (c *Config) validateConcat() error {
	if c.Concat.PauseSeconds < 0 {
		return errors.New("concat.pause_seconds must be zero or positive")
	}
	switch c.Concat.Strategy {
	case StrategyAuto, StrategyNative, StrategyGoAudio:
	default:
		return fmt.Errorf("concat.strategy: unsupported value %q (want auto, native, or goaudio)", c.Concat.Strategy)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
