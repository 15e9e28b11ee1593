package concat

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"narrator/internal/fileutil"
	"narrator/internal/logging"
	"narrator/internal/wav"
)

// GoAudioName identifies the go-audio strategy.
const GoAudioName = "goaudio"

// GoAudio decodes clips into sample buffers and re-encodes the joined buffer.
type GoAudio struct {
	logger *slog.Logger
}

// NewGoAudio constructs the go-audio strategy. A nil logger discards output.
func NewGoAudio(logger *slog.Logger) *GoAudio {
	return &GoAudio{logger: logging.NewComponentLogger(logger, "concat")}
}

// Name returns the strategy identifier.
func (g *GoAudio) Name() string { return GoAudioName }

// Concatenate decodes the included inputs, appends zero samples between
// clips and encodes the result to output.
func (g *GoAudio) Concatenate(ctx context.Context, inputs []string, pauseSeconds float64, output string) (*Result, error) {
	sel, err := selectInputs(ctx, inputs, pauseSeconds, g.logger)
	if err != nil {
		return nil, err
	}

	format := sel.format
	joined := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: int(format.NumChannels), SampleRate: int(format.SampleRate)},
		SourceBitDepth: int(format.BitsPerSample),
		Data:           make([]int, 0, int(sel.dataSize)/format.BytesPerSample()),
	}
	pauseSamples := wav.SilenceBytes(format, pauseSeconds) / format.BytesPerSample()

	for i, src := range sel.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		samples, err := decodeSamples(src.path)
		if err != nil {
			return nil, fmt.Errorf("goaudio concat: decode %s: %w", src.path, err)
		}
		if i > 0 {
			joined.Data = append(joined.Data, make([]int, pauseSamples)...)
		}
		joined.Data = append(joined.Data, samples...)
	}

	err = fileutil.WriteAtomicFile(output, 0o644, func(f *os.File) error {
		enc := gowav.NewEncoder(f, int(format.SampleRate), int(format.BitsPerSample), int(format.NumChannels), wav.FormatPCM)
		if err := enc.Write(joined); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("goaudio concat: encode: %w", err)
	}

	header, err := wav.ReadHeaderFile(output)
	if err != nil {
		return nil, fmt.Errorf("goaudio concat: verify output: %w", err)
	}
	result := sel.result(output, GoAudioName)
	result.DataSize = header.DataSize
	g.logger.Info("chapter merged",
		logging.String("output", output),
		logging.Int("included", len(result.Included)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int64("data_bytes", int64(result.DataSize)),
		logging.String("strategy", GoAudioName),
	)
	return result, nil
}

func decodeSamples(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, wav.ErrMalformedContainer
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Data, nil
}
