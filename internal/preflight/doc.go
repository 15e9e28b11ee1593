// Package preflight provides readiness checks for the filesystem paths and
// engine credentials that narrator depends on.
//
// RunAll backs the `narrator doctor` command and runs before long builds so a
// missing API key or unwritable output directory halts the run before any
// engine request is made. Each check returns a Result rather than an error so
// callers can render every failure at once.
package preflight
