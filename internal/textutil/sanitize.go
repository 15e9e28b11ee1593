package textutil

import (
	"fmt"
	"strings"
)

// fileNameReplacer replaces filesystem-reserved characters with underscores.
var fileNameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// untitled is used when a title sanitizes to nothing.
const untitled = "untitled"

// SanitizeFileName replaces reserved characters with underscores and trims
// leading and trailing dots and spaces.
func SanitizeFileName(name string) string {
	return strings.Trim(fileNameReplacer.Replace(name), ". ")
}

// SafeTitle sanitizes a chapter title for use as a filename stem.
// Titles that sanitize to an empty string become "untitled".
func SafeTitle(title string) string {
	if safe := SanitizeFileName(title); safe != "" {
		return safe
	}
	return untitled
}

// UnitFileName returns the per-unit filename for a sanitized title.
func UnitFileName(safeTitle string, index int) string {
	return fmt.Sprintf("%s_%03d.wav", safeTitle, index)
}

// MergedFileName returns the merged chapter filename for a sanitized title.
func MergedFileName(safeTitle string) string {
	return safeTitle + "_cat.wav"
}

// IsPlainFileName reports whether name has no directory components.
func IsPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
