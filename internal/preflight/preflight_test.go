package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"narrator/internal/config"
	"narrator/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentials_Missing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEngine(config.EngineOpenAI))
	cfg.Synthesis.APIKey = ""

	result := CheckCredentials(cfg)
	if result.Passed {
		t.Fatal("expected failure without api key")
	}
	if !strings.Contains(result.Detail, "OPENAI_API_KEY") {
		t.Fatalf("detail should name env var, got %q", result.Detail)
	}
}

func TestCheckStrategy(t *testing.T) {
	if !CheckStrategy(config.StrategyNative).Passed {
		t.Fatal("native should pass")
	}
	if CheckStrategy("ffmpeg").Passed {
		t.Fatal("unknown strategy should fail")
	}
}

func TestCheckSegmentation_BadCustomPattern(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Segmentation.Locale = "custom"
	cfg.Segmentation.MarkerPattern = "(["

	if CheckSegmentation(cfg).Passed {
		t.Fatal("expected invalid pattern to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Healthy(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_SkipsJournalWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJournal())

	for _, r := range RunAll(context.Background(), cfg) {
		if r.Name == "Run journal" {
			t.Fatal("journal check should be skipped")
		}
	}
}

func TestRunAll_ReportsMissingOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "missing")

	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Output directory" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
