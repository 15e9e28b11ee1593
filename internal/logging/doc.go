// Package logging assembles structured slog loggers and formatting helpers used
// across narrator.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so synthesis and concatenation
// code can tag log lines with the run ID, chapter and unit index without
// threading them through every call. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
