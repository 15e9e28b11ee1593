package synth

import (
	"encoding/json"
	"strings"

	"narrator/internal/segment"
	"narrator/internal/textutil"
)

// Status is the lifecycle state of one unit.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Unit is one paragraph of a chapter and the file it synthesizes to.
// Identity is (safe chapter title, Index).
type Unit struct {
	Index    int
	Text     string
	Filename string
	Status   Status
	// Reused is set when the unit file existed before the run.
	Reused bool
	Err    error
}

// MarshalJSON renders Err as a string.
func (u Unit) MarshalJSON() ([]byte, error) {
	type unitJSON struct {
		Index    int    `json:"index"`
		Text     string `json:"text"`
		Filename string `json:"filename"`
		Status   Status `json:"status"`
		Reused   bool   `json:"reused,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	out := unitJSON{
		Index:    u.Index,
		Text:     u.Text,
		Filename: u.Filename,
		Status:   u.Status,
		Reused:   u.Reused,
	}
	if u.Err != nil {
		out.Error = u.Err.Error()
	}
	return json.Marshal(out)
}

// PlanUnits returns the pending units of chapter, 1-indexed in paragraph order.
func PlanUnits(chapter segment.Chapter) []Unit {
	safeTitle := textutil.SafeTitle(chapter.Title)
	units := make([]Unit, 0, len(chapter.Paragraphs))
	for i, paragraph := range chapter.Paragraphs {
		index := i + 1
		units = append(units, Unit{
			Index:    index,
			Text:     paragraph,
			Filename: textutil.UnitFileName(safeTitle, index),
			Status:   StatusPending,
		})
	}
	return units
}

func (u Unit) blank() bool {
	return strings.TrimSpace(u.Text) == ""
}
