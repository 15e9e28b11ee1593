package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one synthesis or build invocation.
	FieldRunID = "run_id"
	// FieldChapter is the chapter title a log line refers to.
	FieldChapter = "chapter"
	// FieldUnit is the 1-based unit index within a chapter.
	FieldUnit = "unit"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	chapterKey contextKey = "chapter"
	unitKey    contextKey = "unit"
)

// WithRunID tags ctx with a run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithChapter tags ctx with the chapter being processed.
func WithChapter(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, chapterKey, title)
}

// WithUnit tags ctx with the 1-based unit index being processed.
func WithUnit(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, unitKey, index)
}

// RunIDFromContext returns the run identifier stored in ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if title, ok := ctx.Value(chapterKey).(string); ok && title != "" {
		fields = append(fields, slog.String(FieldChapter, title))
	}
	if unit, ok := ctx.Value(unitKey).(int); ok && unit > 0 {
		fields = append(fields, slog.Int(FieldUnit, unit))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
