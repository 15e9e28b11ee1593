package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSynthesis()
	c.normalizeSegmentation()
	c.normalizeConcat()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSynthesis() {
	c.Synthesis.Engine = strings.ToLower(strings.TrimSpace(c.Synthesis.Engine))
	if c.Synthesis.Engine == "" {
		c.Synthesis.Engine = defaultEngine
	}
	c.Synthesis.Model = strings.TrimSpace(c.Synthesis.Model)
	if c.Synthesis.Model == "" {
		c.Synthesis.Model = defaultModelFor(c.Synthesis.Engine)
	}
	c.Synthesis.VoiceA = strings.TrimSpace(c.Synthesis.VoiceA)
	c.Synthesis.VoiceB = strings.TrimSpace(c.Synthesis.VoiceB)
	if c.Synthesis.Engine == EngineOpenAI && c.Synthesis.VoiceA == defaultVoiceA {
		c.Synthesis.VoiceA = defaultOpenAIVoice
	}
	c.Synthesis.APIKey = strings.TrimSpace(c.Synthesis.APIKey)
	if c.Synthesis.APIKey == "" {
		if value, ok := os.LookupEnv(apiKeyEnv(c.Synthesis.Engine)); ok {
			c.Synthesis.APIKey = strings.TrimSpace(value)
		}
	}
	c.Synthesis.BaseURL = strings.TrimSpace(c.Synthesis.BaseURL)
}

func (c *Config) normalizeSegmentation() {
	c.Segmentation.Locale = strings.ToLower(strings.TrimSpace(c.Segmentation.Locale))
	if c.Segmentation.Locale == "" {
		c.Segmentation.Locale = defaultLocale
	}
	c.Segmentation.PrefaceTitle = strings.TrimSpace(c.Segmentation.PrefaceTitle)
	c.Segmentation.WholeDocumentTitle = strings.TrimSpace(c.Segmentation.WholeDocumentTitle)
	if c.Segmentation.LongBlockThreshold == 0 {
		c.Segmentation.LongBlockThreshold = defaultLongBlockThreshold
	}
}

func (c *Config) normalizeConcat() {
	c.Concat.Strategy = strings.ToLower(strings.TrimSpace(c.Concat.Strategy))
	if c.Concat.Strategy == "" {
		c.Concat.Strategy = defaultStrategy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// APIKeyEnv returns the environment variable consulted for engine credentials.
func APIKeyEnv(engine string) string {
	return apiKeyEnv(engine)
}

func apiKeyEnv(engine string) string {
	if engine == EngineOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
