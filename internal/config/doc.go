// Package config loads, normalizes, and validates narrator configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and OPENAI_API_KEY. The Config type centralizes every knob the
// CLI needs: where chapter audio is written, which synthesis engine and voices
// to use, how documents are split into chapters, and how chapters are joined.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config
