package audiobook

import (
	"context"
	"errors"
	"io/fs"

	"narrator/internal/concat"
	"narrator/internal/synth"
	"narrator/internal/tts"
	"narrator/internal/wav"
)

var kinds = []struct {
	target error
	name   string
}{
	{context.Canceled, "interrupted"},
	{context.DeadlineExceeded, "timeout"},
	{synth.ErrOutputLocked, "output_locked"},
	{synth.ErrNoUnitsGenerated, "no_units_generated"},
	{concat.ErrNoValidInputs, "no_valid_inputs"},
	{concat.ErrInvalidPause, "invalid_pause"},
	{concat.ErrFormatMismatch, "format_mismatch"},
	{wav.ErrMissingFormatChunk, "missing_format_chunk"},
	{wav.ErrMissingDataChunk, "missing_data_chunk"},
	{wav.ErrMalformedContainer, "malformed_container"},
	{tts.ErrNoAudio, "no_audio"},
	{tts.ErrEngineNotFound, "engine_not_found"},
	{synth.ErrSynthesisFailure, "synthesis_failure"},
	{ErrChapterOutOfRange, "chapter_out_of_range"},
	{ErrInvalidFileName, "invalid_file_name"},
	{ErrChaptersFailed, "chapters_failed"},
	{fs.ErrNotExist, "not_found"},
}

// Kind returns the snake_case name of the most specific known error in err's
// chain, "internal" for unknown errors and "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "internal"
}
