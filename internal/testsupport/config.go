package testsupport

import (
	"path/filepath"
	"testing"

	"narrator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Synthesis.APIKey = "test"
	cfgVal.Synthesis.Model = "test-model"
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithEngine selects the synthesis engine on the test config.
func WithEngine(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Synthesis.Engine = name
	}
}

// WithLocale selects the segmentation preset on the test config.
func WithLocale(locale string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Segmentation.Locale = locale
	}
}

// WithPause overrides the concatenation pause.
func WithPause(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Concat.PauseSeconds = seconds
	}
}

// WithStrategy overrides the concatenation strategy.
func WithStrategy(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Concat.Strategy = name
	}
}

// WithoutJournal disables the run history database.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}
