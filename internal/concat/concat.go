package concat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"narrator/internal/logging"
	"narrator/internal/wav"
)

var (
	// ErrFormatMismatch marks an input whose format differs from the reference format.
	ErrFormatMismatch = errors.New("audio format mismatch")
	// ErrNoValidInputs is returned when no input survives filtering.
	ErrNoValidInputs = errors.New("no valid audio inputs")
	// ErrInvalidPause is returned for a negative pause length.
	ErrInvalidPause = errors.New("pause seconds must be zero or positive")
)

// Concatenator joins WAV inputs into output.
type Concatenator interface {
	Concatenate(ctx context.Context, inputs []string, pauseSeconds float64, output string) (*Result, error)
	Name() string
}

// Skip records an input left out of the merge.
type Skip struct {
	Path   string
	Reason error
}

// MarshalJSON renders Reason as a string.
func (s Skip) MarshalJSON() ([]byte, error) {
	reason := ""
	if s.Reason != nil {
		reason = s.Reason.Error()
	}
	return json.Marshal(struct {
		Path   string `json:"path"`
		Reason string `json:"reason"`
	}{s.Path, reason})
}

// Result describes a finished merge.
type Result struct {
	Output   string     `json:"output"`
	Format   wav.Format `json:"format"`
	Included []string   `json:"included"`
	Skipped  []Skip     `json:"skipped"`
	DataSize uint32     `json:"data_size"`
	Strategy string     `json:"strategy"`
}

// Duration returns the merged playback length in seconds.
func (r *Result) Duration() float64 {
	return r.Format.Duration(int(r.DataSize))
}

type source struct {
	path   string
	header wav.Header
}

type selection struct {
	format   wav.Format
	sources  []source
	skipped  []Skip
	dataSize uint64
}

// selectInputs applies the shared filtering rules: the first parseable file
// fixes the reference format, later files must match it.
func selectInputs(ctx context.Context, inputs []string, pauseSeconds float64, logger *slog.Logger) (*selection, error) {
	if pauseSeconds < 0 || math.IsNaN(pauseSeconds) || math.IsInf(pauseSeconds, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPause, pauseSeconds)
	}
	sel := &selection{skipped: []Skip{}}
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := inspect(path)
		if err == nil && len(sel.sources) > 0 && !header.Format.Compatible(sel.format) {
			err = fmt.Errorf("%w: %s, reference %s", ErrFormatMismatch, header.Format, sel.format)
		}
		if err != nil {
			sel.skipped = append(sel.skipped, Skip{Path: path, Reason: err})
			logging.WarnWithContext(logger, "skipping concat input", "concat_input_skipped",
				logging.String("input", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "merged chapter will not contain this clip"),
				logging.String(logging.FieldErrorHint, "regenerate the unit or remove it from the input list"),
			)
			continue
		}
		if len(sel.sources) == 0 {
			sel.format = header.Format
		}
		sel.sources = append(sel.sources, source{path: path, header: header})
		sel.dataSize += uint64(header.DataSize)
	}
	if len(sel.sources) == 0 {
		return nil, ErrNoValidInputs
	}
	sel.dataSize += uint64(len(sel.sources)-1) * uint64(wav.SilenceBytes(sel.format, pauseSeconds))
	if sel.dataSize > math.MaxUint32-36 {
		return nil, fmt.Errorf("merged data size %d exceeds the WAV limit", sel.dataSize)
	}
	return sel, nil
}

func inspect(path string) (wav.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return wav.Header{}, err
	}
	defer f.Close()

	header, err := wav.ParseHeader(f)
	if err != nil {
		return wav.Header{}, err
	}
	info, err := f.Stat()
	if err != nil {
		return wav.Header{}, err
	}
	if end := header.DataOffset + int64(header.DataSize); end > info.Size() {
		return wav.Header{}, fmt.Errorf("%w: data chunk declares %d bytes, %d present",
			wav.ErrMalformedContainer, header.DataSize, info.Size()-header.DataOffset)
	}
	return header, nil
}

func (s *selection) result(output, strategy string) *Result {
	included := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		included = append(included, src.path)
	}
	return &Result{
		Output:   output,
		Format:   s.format,
		Included: included,
		Skipped:  s.skipped,
		DataSize: uint32(s.dataSize),
		Strategy: strategy,
	}
}
