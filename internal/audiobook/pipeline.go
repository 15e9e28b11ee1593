package audiobook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"narrator/internal/concat"
	"narrator/internal/journal"
	"narrator/internal/logging"
	"narrator/internal/segment"
	"narrator/internal/synth"
	"narrator/internal/textutil"
)

var (
	// ErrInvalidFileName is returned for concat inputs that are not plain file names.
	ErrInvalidFileName = errors.New("input must be a file name without path separators")
	// ErrChaptersFailed is returned when at least one selected chapter failed.
	ErrChaptersFailed = errors.New("one or more chapters failed")
)

// Synthesizer renders a chapter into unit files.
type Synthesizer interface {
	SynthesizeChapter(ctx context.Context, chapter segment.Chapter, req synth.RequestOptions) (*synth.Report, error)
	OutputDir() string
}

// Recorder stores run history.
type Recorder interface {
	Record(ctx context.Context, run *journal.Run, units []journal.UnitRecord) error
}

// Deps bundles the collaborators a Pipeline drives. Synthesizer may be nil for
// concat-only use; Recorder may be nil to skip history.
type Deps struct {
	Synthesizer  Synthesizer
	Concatenator concat.Concatenator
	Recorder     Recorder
	Logger       *slog.Logger
}

// Options configures a Pipeline.
type Options struct {
	OutputDir    string
	PauseSeconds float64
	// Engine is recorded with synthesis runs.
	Engine string
}

// Pipeline runs documents through synthesis and concatenation.
type Pipeline struct {
	opts   Options
	deps   Deps
	logger *slog.Logger
}

// ChapterOutcome reports one chapter of a Synthesize or Build run.
type ChapterOutcome struct {
	Position int
	Title    string
	Report   *synth.Report
	Merge    *concat.Result
	Err      error
}

// Failed reports whether the chapter ended with an error.
func (o ChapterOutcome) Failed() bool {
	return o.Err != nil
}

// MarshalJSON renders Err as message plus kind.
func (o ChapterOutcome) MarshalJSON() ([]byte, error) {
	type outcomeJSON struct {
		Position  int            `json:"position"`
		Title     string         `json:"title"`
		Report    *synth.Report  `json:"synthesis,omitempty"`
		Merge     *concat.Result `json:"merge,omitempty"`
		Error     string         `json:"error,omitempty"`
		ErrorKind string         `json:"error_kind,omitempty"`
	}
	out := outcomeJSON{
		Position: o.Position,
		Title:    o.Title,
		Report:   o.Report,
		Merge:    o.Merge,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		out.ErrorKind = Kind(o.Err)
	}
	return json.Marshal(out)
}

// New constructs a Pipeline.
func New(opts Options, deps Deps) (*Pipeline, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("audiobook: output directory is required")
	}
	if opts.PauseSeconds < 0 {
		return nil, concat.ErrInvalidPause
	}
	if deps.Concatenator == nil {
		return nil, errors.New("audiobook: concatenator is required")
	}
	return &Pipeline{
		opts:   opts,
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "audiobook"),
	}, nil
}

// Synthesize renders the selected chapters into unit files.
func (p *Pipeline) Synthesize(ctx context.Context, doc *Document, positions []int, req synth.RequestOptions) ([]ChapterOutcome, error) {
	return p.run(ctx, doc, positions, req, false)
}

// Build renders the selected chapters and merges each into {safeTitle}_cat.wav.
func (p *Pipeline) Build(ctx context.Context, doc *Document, positions []int, req synth.RequestOptions) ([]ChapterOutcome, error) {
	return p.run(ctx, doc, positions, req, true)
}

func (p *Pipeline) run(ctx context.Context, doc *Document, positions []int, req synth.RequestOptions, merge bool) ([]ChapterOutcome, error) {
	if p.deps.Synthesizer == nil {
		return nil, errors.New("audiobook: synthesizer is required")
	}
	selected, err := doc.Select(positions)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ChapterOutcome, 0, len(selected))
	failed := 0
	for _, sel := range selected {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome := p.runChapter(ctx, doc, sel, req, merge)
		outcomes = append(outcomes, outcome)
		if err := ctx.Err(); err != nil {
			if outcome.Err != nil {
				return outcomes, outcome.Err
			}
			return outcomes, err
		}
		if outcome.Failed() {
			failed++
		}
	}

	p.logger.Info("document run finished",
		logging.String("document", filepath.Base(doc.Path)),
		logging.Int("chapters", len(outcomes)),
		logging.Int("failed", failed),
		logging.Bool("merged", merge),
	)
	if failed > 0 {
		return outcomes, fmt.Errorf("%w: %d of %d", ErrChaptersFailed, failed, len(outcomes))
	}
	return outcomes, nil
}

func (p *Pipeline) runChapter(ctx context.Context, doc *Document, sel Selected, req synth.RequestOptions, merge bool) ChapterOutcome {
	runID := journal.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	outcome := ChapterOutcome{Position: sel.Position, Title: sel.Chapter.Title}

	started := time.Now()
	report, err := p.deps.Synthesizer.SynthesizeChapter(ctx, sel.Chapter, req)
	outcome.Report = report
	p.recordSynthesis(ctx, runID, doc.Path, started, report, err)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if !merge {
		return outcome
	}

	result, err := p.Concatenate(ctx, sel.Chapter.Title, report.Saved, p.opts.PauseSeconds)
	outcome.Merge = result
	outcome.Err = err
	return outcome
}

// Concatenate merges the named unit files of the output directory into
// {safeTitle}_cat.wav using the configured pause.
func (p *Pipeline) Concatenate(ctx context.Context, title string, names []string, pauseSeconds float64) (*concat.Result, error) {
	started := time.Now()
	result, err := ConcatenateChapter(ctx, p.deps.Concatenator, p.opts.OutputDir, title, names, pauseSeconds)
	p.recordConcat(ctx, title, started, result, err)
	return result, err
}

// ConcatenateChapter resolves names against outputDir and merges them into
// {safeTitle}_cat.wav there. Names must not contain path separators.
func ConcatenateChapter(ctx context.Context, cat concat.Concatenator, outputDir, title string, names []string, pauseSeconds float64) (*concat.Result, error) {
	inputs := make([]string, 0, len(names))
	for _, name := range names {
		if !textutil.IsPlainFileName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
		}
		inputs = append(inputs, filepath.Join(outputDir, name))
	}
	output := filepath.Join(outputDir, textutil.MergedFileName(textutil.SafeTitle(title)))
	return cat.Concatenate(ctx, inputs, pauseSeconds, output)
}

// UnitNames lists the unit files of chapter present in dir, in index order.
func UnitNames(dir string, chapter segment.Chapter) []string {
	safeTitle := textutil.SafeTitle(chapter.Title)
	existing := synth.CheckExisting(dir, safeTitle, len(chapter.Paragraphs))
	indices := make([]int, 0, len(existing))
	for index := range existing {
		indices = append(indices, index)
	}
	slices.Sort(indices)
	names := make([]string, 0, len(indices))
	for _, index := range indices {
		names = append(names, existing[index])
	}
	return names
}

func (p *Pipeline) recordSynthesis(ctx context.Context, runID, document string, started time.Time, report *synth.Report, runErr error) {
	if p.deps.Recorder == nil || report == nil {
		return
	}
	run := &journal.Run{
		ID:         runID,
		Kind:       journal.KindSynthesis,
		Document:   filepath.Base(document),
		Chapter:    report.Chapter,
		Engine:     p.opts.Engine,
		Status:     runStatus(runErr, len(report.FailedIndices)),
		Saved:      len(report.Saved),
		Failed:     len(report.FailedIndices),
		Skipped:    len(report.SkippedIndices),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	units := make([]journal.UnitRecord, 0, len(report.Units))
	for _, unit := range report.Units {
		record := journal.UnitRecord{Index: unit.Index, Filename: unit.Filename, Status: string(unit.Status)}
		if unit.Err != nil {
			record.Error = unit.Err.Error()
		}
		units = append(units, record)
	}
	p.record(ctx, run, units)
}

func (p *Pipeline) recordConcat(ctx context.Context, title string, started time.Time, result *concat.Result, runErr error) {
	if p.deps.Recorder == nil {
		return
	}
	run := &journal.Run{
		Kind:       journal.KindConcat,
		Chapter:    title,
		Status:     runStatus(runErr, 0),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if result != nil {
		run.Output = filepath.Base(result.Output)
		run.Saved = len(result.Included)
		run.Skipped = len(result.Skipped)
	}
	if runErr != nil {
		run.Error = runErr.Error()
		run.Failed = 1
	}
	p.record(ctx, run, nil)
}

func (p *Pipeline) record(ctx context.Context, run *journal.Run, units []journal.UnitRecord) {
	// History must still be written for interrupted runs.
	if err := p.deps.Recorder.Record(context.WithoutCancel(ctx), run, units); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "failed to record run history", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or disable [journal]"),
			logging.String(logging.FieldImpact, "run is missing from narrator history"),
		)
	}
}

func runStatus(err error, failed int) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return journal.StatusInterrupted
	case err != nil:
		return journal.StatusFailed
	case failed > 0:
		return journal.StatusPartial
	default:
		return journal.StatusSucceeded
	}
}
