package concat

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"narrator/internal/fileutil"
	"narrator/internal/logging"
	"narrator/internal/wav"
)

// NativeName identifies the native strategy.
const NativeName = "native"

// Native writes PCM payloads behind one canonical header.
type Native struct {
	logger *slog.Logger
}

// NewNative constructs the native strategy. A nil logger discards output.
func NewNative(logger *slog.Logger) *Native {
	return &Native{logger: logging.NewComponentLogger(logger, "concat")}
}

// Name returns the strategy identifier.
func (n *Native) Name() string { return NativeName }

// Concatenate writes the included inputs to output in order with
// pauseSeconds of silence between consecutive clips.
func (n *Native) Concatenate(ctx context.Context, inputs []string, pauseSeconds float64, output string) (*Result, error) {
	sel, err := selectInputs(ctx, inputs, pauseSeconds, n.logger)
	if err != nil {
		return nil, err
	}
	silence := wav.Silence(sel.format, pauseSeconds)

	err = fileutil.WriteAtomic(output, 0o644, func(w io.Writer) error {
		if _, err := w.Write(wav.BuildHeader(sel.format, uint32(sel.dataSize))); err != nil {
			return err
		}
		for i, src := range sel.sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 && len(silence) > 0 {
				if _, err := w.Write(silence); err != nil {
					return err
				}
			}
			pcm, err := wav.ReadSamples(src.path, src.header)
			if err != nil {
				return fmt.Errorf("read %s: %w", src.path, err)
			}
			if _, err := w.Write(pcm); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("native concat: %w", err)
	}

	result := sel.result(output, NativeName)
	n.logger.Info("chapter merged",
		logging.String("output", output),
		logging.Int("included", len(result.Included)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int64("data_bytes", int64(result.DataSize)),
		logging.String("strategy", NativeName),
	)
	return result, nil
}
