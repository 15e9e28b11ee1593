package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// OpenAIName identifies the OpenAI engine in the registry.
	OpenAIName = "openai"
	// DefaultOpenAIModel supports reading instructions.
	DefaultOpenAIModel = "gpt-4o-mini-tts"

	// The speech endpoint emits 24 kHz 16-bit mono little-endian PCM.
	openAIPCMTag = "audio/L16;codec=pcm;rate=24000"
)

// OpenAIConfig configures the OpenAI engine.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI synthesizes single-voice speech through the OpenAI speech endpoint.
// Only VoiceA is used.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI builds an OpenAI engine.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Name returns the engine identifier.
func (o *OpenAI) Name() string { return OpenAIName }

// Synthesize requests raw PCM for req.Text read in VoiceA.
func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(o.model),
		Input:          req.Text,
		Voice:          openai.AudioSpeechNewParamsVoice(req.VoiceA),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		params.Instructions = openai.String(prompt)
	}

	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: speech: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoAudio
	}
	return &Audio{Data: data, FormatTag: openAIPCMTag}, nil
}
