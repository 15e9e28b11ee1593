package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"narrator/internal/fileutil"
	"narrator/internal/logging"
	"narrator/internal/segment"
	"narrator/internal/textutil"
	"narrator/internal/tts"
	"narrator/internal/wav"
)

// LockFileName is created in the output directory while a run is active.
const LockFileName = ".narrator.lock"

// Options configures an Orchestrator.
type Options struct {
	OutputDir    string
	SkipExisting bool
}

// RequestOptions carries per-run engine parameters.
type RequestOptions struct {
	Prompt string
	VoiceA string
	VoiceB string
}

// Report summarizes one chapter run.
type Report struct {
	Chapter        string    `json:"chapter"`
	SafeTitle      string    `json:"safe_title"`
	Units          []Unit    `json:"units"`
	Saved          []string  `json:"saved"`
	FailedIndices  []int     `json:"failed_indices"`
	SkippedIndices []int     `json:"skipped_indices"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Orchestrator synthesizes chapters unit by unit.
type Orchestrator struct {
	opts   Options
	engine tts.Engine
	logger *slog.Logger
}

// New constructs an Orchestrator. A nil logger discards output.
func New(opts Options, engine tts.Engine, logger *slog.Logger) (*Orchestrator, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("synth: output directory is required")
	}
	if engine == nil {
		return nil, errors.New("synth: engine is required")
	}
	return &Orchestrator{
		opts:   opts,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "synth"),
	}, nil
}

// OutputDir returns the directory unit files are written to.
func (o *Orchestrator) OutputDir() string {
	return o.opts.OutputDir
}

// CheckExisting maps each index in 1..totalUnits whose unit file exists to its filename.
func (o *Orchestrator) CheckExisting(safeTitle string, totalUnits int) map[int]string {
	return CheckExisting(o.opts.OutputDir, safeTitle, totalUnits)
}

// CheckExisting maps each index in 1..totalUnits whose unit file exists in dir to its filename.
func CheckExisting(dir, safeTitle string, totalUnits int) map[int]string {
	existing := make(map[int]string)
	for index := 1; index <= totalUnits; index++ {
		name := textutil.UnitFileName(safeTitle, index)
		if ok, err := fileutil.Exists(filepath.Join(dir, name)); err == nil && ok {
			existing[index] = name
		}
	}
	return existing
}

// SynthesizeChapter runs every unit of chapter in order. The report is
// returned even when the error is non-nil.
func (o *Orchestrator) SynthesizeChapter(ctx context.Context, chapter segment.Chapter, req RequestOptions) (*Report, error) {
	safeTitle := textutil.SafeTitle(chapter.Title)
	report := &Report{
		Chapter:        chapter.Title,
		SafeTitle:      safeTitle,
		Units:          PlanUnits(chapter),
		Saved:          []string{},
		FailedIndices:  []int{},
		SkippedIndices: []int{},
		StartedAt:      time.Now(),
	}
	defer func() {
		report.Saved = savedFiles(report.Units)
		report.FinishedAt = time.Now()
	}()

	if err := os.MkdirAll(o.opts.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(o.opts.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return report, ErrOutputLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	ctx = logging.WithChapter(ctx, chapter.Title)
	logger := logging.WithContext(ctx, o.logger)

	var existing map[int]string
	if o.opts.SkipExisting {
		existing = o.CheckExisting(safeTitle, len(report.Units))
	}
	logger.Info("chapter synthesis started",
		logging.Int("units", len(report.Units)),
		logging.Int("existing", len(existing)),
		logging.String("engine", o.engine.Name()),
	)

	for i := range report.Units {
		unit := &report.Units[i]
		if err := ctx.Err(); err != nil {
			return report, o.interrupted(logger, err)
		}
		if _, ok := existing[unit.Index]; ok {
			unit.Status = StatusSkipped
			unit.Reused = true
			report.SkippedIndices = append(report.SkippedIndices, unit.Index)
			logger.Debug("unit already present", logging.Int(logging.FieldUnit, unit.Index))
			continue
		}
		if unit.blank() {
			unit.Status = StatusSkipped
			report.SkippedIndices = append(report.SkippedIndices, unit.Index)
			continue
		}

		unitCtx := logging.WithUnit(ctx, unit.Index)
		if err := o.synthesizeUnit(unitCtx, unit, req); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				unit.Status = StatusPending
				return report, o.interrupted(logger, ctxErr)
			}
			unit.Status = StatusFailed
			unit.Err = err
			report.FailedIndices = append(report.FailedIndices, unit.Index)
			logging.WarnWithContext(logging.WithContext(unitCtx, o.logger), "unit synthesis failed", "unit_synthesis_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun with skip_existing to retry only failed units"),
				logging.String(logging.FieldImpact, "chapter audio will be missing this paragraph"),
			)
			continue
		}
		unit.Status = StatusCompleted
	}

	saved := savedFiles(report.Units)
	if len(saved) == 0 {
		logging.ErrorWithContext(logger, "no units generated", "chapter_synthesis_empty",
			logging.Int("failed", len(report.FailedIndices)))
		return report, ErrNoUnitsGenerated
	}
	logger.Info("chapter synthesis finished",
		logging.Int("saved", len(saved)),
		logging.Int("failed", len(report.FailedIndices)),
		logging.Int("skipped", len(report.SkippedIndices)),
	)
	return report, nil
}

func (o *Orchestrator) synthesizeUnit(ctx context.Context, unit *Unit, req RequestOptions) error {
	started := time.Now()
	audio, err := o.engine.Synthesize(ctx, tts.Request{
		Text:   unit.Text,
		Prompt: req.Prompt,
		VoiceA: req.VoiceA,
		VoiceB: req.VoiceB,
	})
	if err != nil {
		return fmt.Errorf("%w: unit %d: %w", ErrSynthesisFailure, unit.Index, err)
	}
	if audio == nil || len(audio.Data) == 0 {
		return fmt.Errorf("%w: unit %d: %w", ErrSynthesisFailure, unit.Index, tts.ErrNoAudio)
	}

	buf, err := toBuffer(audio)
	if err != nil {
		return fmt.Errorf("%w: unit %d: %w", ErrSynthesisFailure, unit.Index, err)
	}
	path := filepath.Join(o.opts.OutputDir, unit.Filename)
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return wav.Encode(w, buf)
	})
	if err != nil {
		return fmt.Errorf("%w: unit %d: %w", ErrSynthesisFailure, unit.Index, err)
	}

	logging.WithContext(ctx, o.logger).Info("unit saved",
		logging.String("output", unit.Filename),
		logging.Duration("elapsed", time.Since(started)),
		logging.String("format", buf.Format.String()),
	)
	return nil
}

// toBuffer takes the engine's audio into a Buffer owned by the unit. Native
// payloads are parsed for their format; raw PCM uses the format its tag
// describes.
func toBuffer(audio *tts.Audio) (wav.Buffer, error) {
	format, native := wav.ParseMIMEType(audio.FormatTag)
	if !native {
		return wav.Buffer{Format: format, Data: audio.Data}.Clone(), nil
	}
	buf, err := wav.Decode(audio.Data)
	if err != nil {
		return wav.Buffer{}, err
	}
	return buf.Clone(), nil
}

func (o *Orchestrator) interrupted(logger *slog.Logger, err error) error {
	logger.Warn("chapter synthesis interrupted",
		logging.String(logging.FieldEventType, "chapter_synthesis_interrupted"),
		logging.String(logging.FieldImpact, "completed units are kept for the next run"),
	)
	return fmt.Errorf("synthesis interrupted: %w", err)
}

func savedFiles(units []Unit) []string {
	saved := make([]string, 0, len(units))
	for _, unit := range units {
		if unit.Status == StatusCompleted || unit.Reused {
			saved = append(saved, unit.Filename)
		}
	}
	return saved
}
