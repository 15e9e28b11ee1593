// Package journal persists run history in SQLite.
//
// Each synthesis or concatenation run is recorded with its outcome counts and
// per-unit results so operators can review what happened with
// `narrator history`. The journal is history only: whether a unit needs to be
// synthesized again is always decided from the files in the output
// directory, never from these records.
package journal
