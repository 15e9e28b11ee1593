// Package segment recovers a chapter/paragraph structure from plain text.
//
// Chapters are located with a MarkerPolicy: a heading pattern plus the
// synthetic titles used for leading unmarked text and for documents with no
// headings at all. Presets cover the Chinese 第N章 convention (the default)
// and English "Chapter N" headings; other conventions are supplied as a custom
// pattern rather than guessed.
//
// Segmentation is pure and deterministic. Each marked chapter carries its own
// heading as paragraph 0 so the title is synthesized as a unit of its own.
package segment
