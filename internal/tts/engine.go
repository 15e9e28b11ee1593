package tts

import (
	"context"
	"errors"
	"time"
)

// ErrNoAudio is returned when an engine response carries no audio payload.
var ErrNoAudio = errors.New("tts: no audio generated")

// Request contains parameters for one synthesis call.
type Request struct {
	Text   string
	Prompt string
	VoiceA string
	VoiceB string
}

// Audio is a synthesized payload plus the format tag the engine reported.
// A WAV tag means Data is a complete container; any other tag means raw PCM.
type Audio struct {
	Data      []byte
	FormatTag string
}

// Engine is the interface for text-to-speech synthesis.
type Engine interface {
	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, req Request) (*Audio, error)
	// Name returns the engine identifier.
	Name() string
}

// withTimeout bounds ctx by timeout unless ctx already carries a deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// composeInput prefixes the text with the reading prompt on its own line.
func composeInput(prompt, text string) string {
	if prompt == "" {
		return text
	}
	return prompt + "\n" + text
}
