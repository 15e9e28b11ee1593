// Package synth turns segmented chapters into per-paragraph WAV unit files.
//
// The Orchestrator walks a chapter's paragraphs in order, asks a tts.Engine
// for audio, normalizes the payload into a WAV container and writes each unit
// atomically as {safeTitle}_{index:03d}.wav. Unit files already on disk are
// the resume checkpoint: with SkipExisting they are never resubmitted.
// Failures are isolated per unit; only a chapter that produced no units at all
// is reported as an operation failure.
package synth
