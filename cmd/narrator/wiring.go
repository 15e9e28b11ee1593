package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"narrator/internal/audiobook"
	"narrator/internal/concat"
	"narrator/internal/config"
	"narrator/internal/journal"
	"narrator/internal/logging"
	"narrator/internal/synth"
	"narrator/internal/tts"
)

// engineFactory builds the engine registry; tests replace it with fakes.
var engineFactory = newEngineRegistry

// newEngineRegistry registers the configured engine plus any other engine
// whose API key is present in the environment.
func newEngineRegistry(ctx context.Context, cfg *config.Config) (*tts.Registry, error) {
	registry := tts.NewRegistry()

	build := func(name, apiKey, model, baseURL string) error {
		var (
			engine tts.Engine
			err    error
		)
		switch name {
		case config.EngineGemini:
			engine, err = tts.NewGemini(ctx, tts.GeminiConfig{APIKey: apiKey, BaseURL: baseURL, Model: model, Timeout: cfg.SynthesisTimeout()})
		case config.EngineOpenAI:
			engine, err = tts.NewOpenAI(tts.OpenAIConfig{APIKey: apiKey, BaseURL: baseURL, Model: model, Timeout: cfg.SynthesisTimeout()})
		default:
			return fmt.Errorf("%w: %s", tts.ErrEngineNotFound, name)
		}
		if err != nil {
			return err
		}
		return registry.Register(engine)
	}

	if err := build(cfg.Synthesis.Engine, cfg.Synthesis.APIKey, cfg.Synthesis.Model, cfg.Synthesis.BaseURL); err != nil {
		return nil, err
	}
	for _, name := range []string{config.EngineGemini, config.EngineOpenAI} {
		if name == cfg.Synthesis.Engine {
			continue
		}
		if key := os.Getenv(config.APIKeyEnv(name)); key != "" {
			if err := build(name, key, "", ""); err != nil {
				return nil, err
			}
		}
	}
	if err := registry.SetDefault(cfg.Synthesis.Engine); err != nil {
		return nil, err
	}
	return registry, nil
}

func newConcatenator(strategy string, logger *slog.Logger) (concat.Concatenator, error) {
	switch strategy {
	case config.StrategyNative:
		return concat.NewNative(logger), nil
	case config.StrategyGoAudio:
		return concat.NewGoAudio(logger), nil
	case config.StrategyAuto, "":
		return concat.Fallback(concat.NewGoAudio(logger), concat.NewNative(logger), logger), nil
	default:
		return nil, fmt.Errorf("unsupported concat strategy %q", strategy)
	}
}

type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *audiobook.Pipeline
	store    *journal.Store
}

func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

type runtimeOptions struct {
	withEngine   bool
	pauseSeconds *float64
	skipExisting *bool
}

// newRuntime wires the pipeline for cfg. The journal is opened when enabled;
// failure to open it only disables history.
func newRuntime(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	logger, err := cmdCtx.newLogger(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}

	pause := cfg.Concat.PauseSeconds
	if opts.pauseSeconds != nil {
		pause = *opts.pauseSeconds
	}
	skipExisting := cfg.Synthesis.SkipExisting
	if opts.skipExisting != nil {
		skipExisting = *opts.skipExisting
	}

	concatenator, err := newConcatenator(cfg.Concat.Strategy, logger)
	if err != nil {
		return nil, err
	}
	deps := audiobook.Deps{Concatenator: concatenator, Logger: logger}

	engineName := ""
	if opts.withEngine {
		if err := cfg.RequireCredentials(); err != nil {
			return nil, err
		}
		registry, err := engineFactory(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		engine, err := registry.Default()
		if err != nil {
			return nil, fmt.Errorf("select engine: %w", err)
		}
		engineName = engine.Name()
		orch, err := synth.New(synth.Options{OutputDir: cfg.Paths.OutputDir, SkipExisting: skipExisting}, engine, logger)
		if err != nil {
			return nil, err
		}
		deps.Synthesizer = orch
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.JournalPath())
		if err != nil {
			logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run narrator doctor"),
				logging.String(logging.FieldImpact, "this run will not appear in narrator history"),
			)
		} else {
			rt.store = store
			deps.Recorder = store
		}
	}

	pipeline, err := audiobook.New(audiobook.Options{
		OutputDir:    cfg.Paths.OutputDir,
		PauseSeconds: pause,
		Engine:       engineName,
	}, deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.pipeline = pipeline
	return rt, nil
}

func loadDocument(cfg *config.Config, path string) (*audiobook.Document, error) {
	segmenter, err := cfg.Segmenter()
	if err != nil {
		return nil, err
	}
	return audiobook.LoadDocument(path, segmenter)
}
