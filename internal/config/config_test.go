package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"narrator/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndUsesEnvKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "narrator", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Synthesis.APIKey != "env-key" {
		t.Fatalf("expected api key from env, got %q", cfg.Synthesis.APIKey)
	}
	if cfg.Synthesis.Model != "gemini-2.5-pro-preview-tts" {
		t.Fatalf("unexpected default model %q", cfg.Synthesis.Model)
	}
	if cfg.Synthesis.VoiceA != "Puck" || cfg.Synthesis.VoiceB != "Zephyr" {
		t.Fatalf("unexpected default voices %q/%q", cfg.Synthesis.VoiceA, cfg.Synthesis.VoiceB)
	}
	if cfg.Concat.PauseSeconds != 1.5 {
		t.Fatalf("unexpected pause %v", cfg.Concat.PauseSeconds)
	}
	if !cfg.Synthesis.SkipExisting {
		t.Fatal("expected skip_existing enabled by default")
	}
	if cfg.JournalPath() != filepath.Join(cfg.Paths.StateDir, "narrator.db") {
		t.Fatalf("unexpected journal path %q", cfg.JournalPath())
	}
}

func TestLoadOpenAIEngineDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
[synthesis]
engine = "OpenAI"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Synthesis.Engine != config.EngineOpenAI {
		t.Fatalf("engine = %q", cfg.Synthesis.Engine)
	}
	if cfg.Synthesis.Model != "gpt-4o-mini-tts" {
		t.Fatalf("model = %q", cfg.Synthesis.Model)
	}
	if cfg.Synthesis.VoiceA != "alloy" {
		t.Fatalf("voice_a = %q", cfg.Synthesis.VoiceA)
	}
	if cfg.Synthesis.APIKey != "sk-test" {
		t.Fatalf("api key = %q", cfg.Synthesis.APIKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"engine", "[synthesis]\nengine = \"piper\"\n", "synthesis.engine"},
		{"strategy", "[concat]\nstrategy = \"ffmpeg\"\n", "concat.strategy"},
		{"pause", "[concat]\npause_seconds = -1.0\n", "concat.pause_seconds"},
		{"locale", "[segmentation]\nlocale = \"fr\"\n", "segmentation"},
		{"custom without pattern", "[segmentation]\nlocale = \"custom\"\n", "marker_pattern"},
		{"empty-matching pattern", "[segmentation]\nlocale = \"custom\"\nmarker_pattern = \"x*\"\npreface_title = \"P\"\nwhole_document_title = \"W\"\n", "empty string"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCustomLocaleBuildsPolicy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
[segmentation]
locale = "custom"
marker_pattern = "(?m)^Part [0-9]+"
preface_title = "Intro"
whole_document_title = "Everything"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	seg, err := cfg.Segmenter()
	if err != nil {
		t.Fatalf("Segmenter failed: %v", err)
	}
	chapters := seg.Segment("hello\n\nPart 1\n\nbody")
	if len(chapters) != 2 || chapters[0].Title != "Intro" || chapters[1].Title != "Part 1" {
		t.Fatalf("unexpected chapters %+v", chapters)
	}
}

func TestPresetTitleOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Segmentation.Locale = "en"
	cfg.Segmentation.WholeDocumentTitle = "Book"
	policy, err := cfg.MarkerPolicy()
	if err != nil {
		t.Fatalf("MarkerPolicy failed: %v", err)
	}
	if policy.WholeDocumentTitle != "Book" || policy.PrefaceTitle != "Preface" {
		t.Fatalf("unexpected policy titles %q/%q", policy.PrefaceTitle, policy.WholeDocumentTitle)
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Synthesis.APIKey = ""
	err := cfg.RequireCredentials()
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected credential error naming env var, got %v", err)
	}
	cfg.Synthesis.APIKey = "k"
	if err := cfg.RequireCredentials(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Concat.Strategy != config.StrategyAuto {
		t.Fatalf("unexpected strategy %q", cfg.Concat.Strategy)
	}
}

func TestSaveSynthesisDefaultsPreservesOtherKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
[synthesis]
engine = "gemini"
voice_a = "Puck"

[concat]
pause_seconds = 2.0
`)
	err := config.SaveSynthesisDefaults(path, config.SynthesisDefaults{Prompt: "Read slowly.", VoiceB: "Kore"})
	if err != nil {
		t.Fatalf("SaveSynthesisDefaults failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var doc map[string]map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse saved config: %v", err)
	}
	if doc["synthesis"]["prompt"] != "Read slowly." || doc["synthesis"]["voice_b"] != "Kore" {
		t.Fatalf("defaults not saved: %v", doc["synthesis"])
	}
	if doc["synthesis"]["voice_a"] != "Puck" {
		t.Fatalf("voice_a lost: %v", doc["synthesis"])
	}
	if doc["concat"]["pause_seconds"] != 2.0 {
		t.Fatalf("concat table lost: %v", doc["concat"])
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load saved config: %v", err)
	}
	if cfg.Synthesis.Prompt != "Read slowly." {
		t.Fatalf("prompt = %q", cfg.Synthesis.Prompt)
	}
}

func TestSaveSynthesisDefaultsRequiresValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveSynthesisDefaults(path, config.SynthesisDefaults{}); err == nil {
		t.Fatal("expected error for empty defaults")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
