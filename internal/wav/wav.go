package wav

import (
	"errors"
	"fmt"
	"math"
)

// WAV layout constants.
const (
	// HeaderSize is the size of the canonical header written by BuildHeader.
	HeaderSize = 44

	// FormatPCM is the fmt chunk audio format code for uncompressed PCM.
	FormatPCM = 1

	// FormatExtensible is the fmt chunk code for WAVE_FORMAT_EXTENSIBLE.
	FormatExtensible = 0xFFFE

	preambleSize    = 12
	chunkHeaderSize = 8
	minFmtChunkSize = 16
)

// Defaults applied when synthesis output arrives without a container.
const (
	DefaultSampleRate    = 24000
	DefaultBitsPerSample = 16
	DefaultChannels      = 1
)

var (
	// ErrMalformedContainer reports a stream that is not a usable RIFF/WAVE file.
	ErrMalformedContainer = errors.New("malformed wav container")
	// ErrMissingFormatChunk reports a stream without a fmt chunk ahead of its data.
	ErrMissingFormatChunk = errors.New("wav fmt chunk missing")
	// ErrMissingDataChunk reports a stream that ended before a data chunk was found.
	ErrMissingDataChunk = errors.New("wav data chunk missing")
)

// Format describes how PCM sample bytes are interpreted.
type Format struct {
	SampleRate    uint32 `json:"sample_rate"`
	BitsPerSample uint16 `json:"bits_per_sample"`
	NumChannels   uint16 `json:"num_channels"`
}

// DefaultFormat returns the format assumed for raw synthesis output.
func DefaultFormat() Format {
	return Format{
		SampleRate:    DefaultSampleRate,
		BitsPerSample: DefaultBitsPerSample,
		NumChannels:   DefaultChannels,
	}
}

// Compatible reports whether two formats can be merged without conversion.
func (f Format) Compatible(other Format) bool {
	return f == other
}

// BytesPerSample returns the byte width of one sample of one channel.
func (f Format) BytesPerSample() int {
	return int(f.BitsPerSample) / 8
}

// BlockAlign returns the byte width of one frame across all channels.
func (f Format) BlockAlign() uint16 {
	return f.NumChannels * (f.BitsPerSample / 8)
}

// ByteRate returns the number of payload bytes per second of audio.
func (f Format) ByteRate() uint32 {
	return f.SampleRate * uint32(f.BlockAlign())
}

// Validate checks that the format describes linear PCM this package can write.
func (f Format) Validate() error {
	if f.SampleRate == 0 {
		return errors.New("sample rate must be positive")
	}
	switch f.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bits per sample %d", f.BitsPerSample)
	}
	if f.NumChannels == 0 {
		return errors.New("channel count must be at least 1")
	}
	return nil
}

// Duration returns the playback length in seconds of dataSize payload bytes.
func (f Format) Duration(dataSize int) float64 {
	rate := f.ByteRate()
	if rate == 0 {
		return 0
	}
	return float64(dataSize) / float64(rate)
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BitsPerSample, f.NumChannels)
}

// SilenceBytes returns the payload length of a pause lasting seconds.
// The sample count is rounded to the nearest frame.
func SilenceBytes(f Format, seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	samples := int(math.Round(float64(f.SampleRate) * seconds))
	return samples * int(f.NumChannels) * f.BytesPerSample()
}

// Silence returns a zeroed payload lasting seconds.
func Silence(f Format, seconds float64) []byte {
	return make([]byte, SilenceBytes(f, seconds))
}

// Buffer is a PCM payload together with the format describing it.
type Buffer struct {
	Format Format
	Data   []byte
}

// Clone returns a deep copy, used when a buffer changes hands.
func (b Buffer) Clone() Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return Buffer{Format: b.Format, Data: data}
}
