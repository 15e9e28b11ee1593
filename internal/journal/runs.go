package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a run.
type Kind string

const (
	KindSynthesis Kind = "synthesis"
	KindConcat    Kind = "concat"
)

// Run outcome values.
const (
	StatusSucceeded   = "succeeded"
	StatusPartial     = "partial"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded synthesis or concatenation.
type Run struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Document   string    `json:"document,omitempty"`
	Chapter    string    `json:"chapter"`
	Engine     string    `json:"engine,omitempty"`
	Status     string    `json:"status"`
	Saved      int       `json:"saved"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the run's wall-clock length.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// UnitRecord is the outcome of one unit within a synthesis run.
type UnitRecord struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores run and its units in one transaction. An empty run.ID is
// filled with a new identifier.
func (s *Store) Record(ctx context.Context, run *Run, units []UnitRecord) error {
	if run == nil {
		return errors.New("journal: nil run")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	return s.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO runs
			(id, kind, document, chapter, engine, status, saved, failed, skipped, output, error, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(run.Kind), run.Document, run.Chapter, run.Engine, run.Status,
			run.Saved, run.Failed, run.Skipped, run.Output, run.Error,
			formatTime(run.StartedAt), formatTime(run.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, unit := range units {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO run_units (run_id, unit_index, filename, status, error) VALUES (?, ?, ?, ?, ?)",
				run.ID, unit.Index, unit.Filename, unit.Status, unit.Error,
			); err != nil {
				return fmt.Errorf("insert unit %d: %w", unit.Index, err)
			}
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, kind, document, chapter, engine, status, saved, failed, skipped, output, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, document, chapter, engine, status, saved, failed, skipped, output, error, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Units returns the unit outcomes of run id in index order.
func (s *Store) Units(ctx context.Context, id string) ([]UnitRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT unit_index, filename, status, error FROM run_units WHERE run_id = ? ORDER BY unit_index", id)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []UnitRecord
	for rows.Next() {
		var unit UnitRecord
		if err := rows.Scan(&unit.Index, &unit.Filename, &unit.Status, &unit.Error); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		kind     string
		started  string
		finished string
	)
	if err := row.Scan(&run.ID, &kind, &run.Document, &run.Chapter, &run.Engine, &run.Status,
		&run.Saved, &run.Failed, &run.Skipped, &run.Output, &run.Error, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = Kind(kind)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
