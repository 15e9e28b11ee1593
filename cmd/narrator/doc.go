// Package main hosts the narrator CLI entrypoint and command graph.
//
// The Cobra-based command tree turns a long text document into per-paragraph
// speech files and merged chapter audio. It centralizes configuration
// resolution, engine construction and structured logging setup so
// subcommands only translate flags into calls on the internal packages.
//
// Keep this package lean: new behavior belongs in internal/audiobook or the
// packages it composes, surfaced here through dedicated commands or flags.
package main
