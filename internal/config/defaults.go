package config

const (
	defaultConfigPath         = "~/.config/narrator/config.toml"
	projectConfigName         = "narrator.toml"
	defaultOutputDir          = "~/.local/share/narrator/output"
	defaultStateDir           = "~/.local/share/narrator/state"
	defaultEngine             = EngineGemini
	defaultGeminiModel        = "gemini-2.5-pro-preview-tts"
	defaultOpenAIModel        = "gpt-4o-mini-tts"
	defaultPrompt             = "Please read carefully and don't mis-read any word."
	defaultVoiceA             = "Puck"
	defaultVoiceB             = "Zephyr"
	defaultOpenAIVoice        = "alloy"
	defaultTimeoutSeconds     = 300
	defaultLocale             = "zh"
	defaultLongBlockThreshold = 500
	defaultPauseSeconds       = 1.5
	defaultStrategy           = StrategyAuto
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Engine names accepted by synthesis.engine.
const (
	EngineGemini = "gemini"
	EngineOpenAI = "openai"
)

// Strategy names accepted by concat.strategy.
const (
	StrategyAuto    = "auto"
	StrategyNative  = "native"
	StrategyGoAudio = "goaudio"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Synthesis: Synthesis{
			Engine:         defaultEngine,
			Prompt:         defaultPrompt,
			VoiceA:         defaultVoiceA,
			VoiceB:         defaultVoiceB,
			TimeoutSeconds: defaultTimeoutSeconds,
			SkipExisting:   true,
		},
		Segmentation: Segmentation{
			Locale:             defaultLocale,
			LongBlockThreshold: defaultLongBlockThreshold,
		},
		Concat: Concat{
			PauseSeconds: defaultPauseSeconds,
			Strategy:     defaultStrategy,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultModelFor(engine string) string {
	if engine == EngineOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}
