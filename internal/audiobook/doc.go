// Package audiobook composes segmentation, synthesis and concatenation into
// whole-document runs.
//
// A Pipeline loads a document, selects chapters by their 1-based position,
// synthesizes each selected chapter into unit files and, for builds, merges
// those units into one chapter file. Chapter failures are reported per
// chapter; a failing chapter never stops its siblings. Cancellation stops the
// run between units and keeps every unit already written.
//
// Kind maps any error produced along the way to a stable snake_case name for
// machine-readable output.
package audiobook
