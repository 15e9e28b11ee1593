package audiobook

import (
	"errors"
	"fmt"
	"slices"

	"narrator/internal/ingest"
	"narrator/internal/segment"
)

// ErrChapterOutOfRange is returned when a selected chapter index does not exist.
var ErrChapterOutOfRange = errors.New("chapter index out of range")

// Document is a segmented source text.
type Document struct {
	Path     string            `json:"path"`
	Encoding string            `json:"encoding"`
	Chapters []segment.Chapter `json:"chapters"`
}

// Selected is a chapter with its 1-based position in the document.
type Selected struct {
	Position int
	Chapter  segment.Chapter
}

// LoadDocument reads path, detects its encoding and splits it into chapters.
func LoadDocument(path string, segmenter *segment.Segmenter) (*Document, error) {
	if segmenter == nil {
		return nil, errors.New("audiobook: segmenter is required")
	}
	text, encoding, err := ingest.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:     path,
		Encoding: encoding,
		Chapters: segmenter.Segment(text),
	}, nil
}

// Select returns the chapters at the given 1-based positions in ascending
// order without duplicates. No positions selects every chapter.
func (d *Document) Select(positions []int) ([]Selected, error) {
	if len(positions) == 0 {
		selected := make([]Selected, 0, len(d.Chapters))
		for i, chapter := range d.Chapters {
			selected = append(selected, Selected{Position: i + 1, Chapter: chapter})
		}
		return selected, nil
	}

	sorted := slices.Clone(positions)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	selected := make([]Selected, 0, len(sorted))
	for _, position := range sorted {
		if position < 1 || position > len(d.Chapters) {
			return nil, fmt.Errorf("%w: %d (document has %d chapters)", ErrChapterOutOfRange, position, len(d.Chapters))
		}
		selected = append(selected, Selected{Position: position, Chapter: d.Chapters[position-1]})
	}
	return selected, nil
}
