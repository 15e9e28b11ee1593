package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"narrator/internal/wav"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// PCM returns size bytes of a repeating non-zero pattern so payloads are
// distinguishable from silence.
func PCM(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = seed + byte(i%7) + 1
	}
	return data
}

// WriteWAV writes a canonical WAV file with the given format and payload
// into dir and returns its path.
func WriteWAV(t testing.TB, dir, name string, format wav.Format, pcm []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, wav.Wrap(pcm, format))
	return path
}

// ReadWAV parses the WAV file at path and returns its payload.
func ReadWAV(t testing.TB, path string) wav.Buffer {
	t.Helper()

	header, err := wav.ReadHeaderFile(path)
	if err != nil {
		t.Fatalf("read header %s: %v", path, err)
	}
	data, err := wav.ReadSamples(path, header)
	if err != nil {
		t.Fatalf("read samples %s: %v", path, err)
	}
	return wav.Buffer{Format: header.Format, Data: data}
}

// MonoFormat is 24 kHz 16-bit mono, the default synthesis output format.
func MonoFormat() wav.Format {
	return wav.DefaultFormat()
}
