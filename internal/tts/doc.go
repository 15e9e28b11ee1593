// Package tts defines the speech synthesis engine contract and the concrete
// engines narrator can drive.
//
// Core packages depend only on Engine. The Gemini engine streams multi-speaker
// audio through google.golang.org/genai; the OpenAI engine requests raw PCM
// through github.com/openai/openai-go. Engines are constructed at the
// composition root and looked up through a Registry.
package tts
