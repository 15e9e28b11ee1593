package concat

import (
	"context"
	"errors"
	"log/slog"

	"narrator/internal/logging"
)

type fallback struct {
	primary   Concatenator
	secondary Concatenator
	logger    *slog.Logger
}

// Fallback returns a Concatenator that runs primary and, when it fails for a
// reason other than bad arguments, empty input or cancellation, runs secondary.
func Fallback(primary, secondary Concatenator, logger *slog.Logger) Concatenator {
	return &fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logging.NewComponentLogger(logger, "concat"),
	}
}

func (f *fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *fallback) Concatenate(ctx context.Context, inputs []string, pauseSeconds float64, output string) (*Result, error) {
	result, err := f.primary.Concatenate(ctx, inputs, pauseSeconds, output)
	if err == nil || !retryable(err) {
		return result, err
	}
	logging.WarnWithContext(f.logger, "concat strategy failed, trying fallback", "concat_fallback",
		logging.String("strategy", f.primary.Name()),
		logging.String("fallback", f.secondary.Name()),
		logging.Error(err),
		logging.String(logging.FieldImpact, "merge continues with the fallback strategy"),
	)
	return f.secondary.Concatenate(ctx, inputs, pauseSeconds, output)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNoValidInputs),
		errors.Is(err, ErrInvalidPause),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
