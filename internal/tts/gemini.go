package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"google.golang.org/genai"

	"narrator/internal/wav"
)

const (
	// GeminiName identifies the Gemini engine in the registry.
	GeminiName = "gemini"
	// DefaultGeminiModel is the multi-speaker preview TTS model.
	DefaultGeminiModel = "gemini-2.5-pro-preview-tts"

	speakerOne = "Speaker 1"
	speakerTwo = "Speaker 2"
)

type streamFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

// GeminiConfig configures the Gemini engine.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Gemini synthesizes two-voice speech through the Gemini API.
type Gemini struct {
	model   string
	timeout time.Duration
	stream  streamFunc
}

// NewGemini builds a Gemini engine backed by a genai client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGemini(cfg, client.Models.GenerateContentStream), nil
}

func newGemini(cfg GeminiConfig, stream streamFunc) *Gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{model: model, timeout: cfg.Timeout, stream: stream}
}

// Name returns the engine identifier.
func (g *Gemini) Name() string { return GeminiName }

// Synthesize streams one request and returns the audio payload. Raw PCM
// chunks sharing the first chunk's MIME type are joined; a WAV chunk is
// returned as-is.
func (g *Gemini) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(composeInput(req.Prompt, req.Text), genai.RoleUser),
	}

	var (
		mimeType string
		buf      bytes.Buffer
	)
	for chunk, err := range g.stream(ctx, g.model, contents, g.generateConfig(req)) {
		if err != nil {
			return nil, fmt.Errorf("gemini: stream: %w", err)
		}
		blob := firstInlineData(chunk)
		if blob == nil {
			continue
		}
		if mimeType == "" {
			mimeType = blob.MIMEType
			buf.Write(blob.Data)
			if wav.IsNative(mimeType) {
				break
			}
			continue
		}
		if blob.MIMEType == mimeType {
			buf.Write(blob.Data)
		}
	}
	if buf.Len() == 0 {
		return nil, ErrNoAudio
	}
	return &Audio{Data: buf.Bytes(), FormatTag: mimeType}, nil
}

func (g *Gemini) generateConfig(req Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](1),
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			MultiSpeakerVoiceConfig: &genai.MultiSpeakerVoiceConfig{
				SpeakerVoiceConfigs: []*genai.SpeakerVoiceConfig{
					speakerVoice(speakerOne, req.VoiceA),
					speakerVoice(speakerTwo, req.VoiceB),
				},
			},
		},
	}
}

func speakerVoice(speaker, voice string) *genai.SpeakerVoiceConfig {
	return &genai.SpeakerVoiceConfig{
		Speaker: speaker,
		VoiceConfig: &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
		},
	}
}

func firstInlineData(chunk *genai.GenerateContentResponse) *genai.Blob {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return nil
	}
	content := chunk.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil
	}
	part := content.Parts[0]
	if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return nil
	}
	return part.InlineData
}
