package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildHeaderLayout(t *testing.T) {
	f := Format{SampleRate: 44100, BitsPerSample: 16, NumChannels: 2}
	header := BuildHeader(f, 1000)

	if len(header) != HeaderSize {
		t.Fatalf("header length = %d, want %d", len(header), HeaderSize)
	}
	for _, tc := range []struct {
		offset int
		tag    string
	}{{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"}} {
		if got := string(header[tc.offset : tc.offset+4]); got != tc.tag {
			t.Errorf("tag at %d = %q, want %q", tc.offset, got, tc.tag)
		}
	}
	if got := binary.LittleEndian.Uint32(header[4:8]); got != 1036 {
		t.Errorf("chunk size = %d, want 1036", got)
	}
	if got := binary.LittleEndian.Uint32(header[16:20]); got != 16 {
		t.Errorf("fmt size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(header[20:22]); got != FormatPCM {
		t.Errorf("audio format = %d, want %d", got, FormatPCM)
	}
	if got := binary.LittleEndian.Uint32(header[28:32]); got != 176400 {
		t.Errorf("byte rate = %d, want 176400", got)
	}
	if got := binary.LittleEndian.Uint16(header[32:34]); got != 4 {
		t.Errorf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint32(header[40:44]); got != 1000 {
		t.Errorf("data size = %d, want 1000", got)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	rates := []uint32{8000, 22050, 24000, 44100, 48000}
	depths := []uint16{8, 16, 24, 32}
	channels := []uint16{1, 2, 6}
	sizes := []uint32{0, 1, 4096}

	for _, rate := range rates {
		for _, depth := range depths {
			for _, ch := range channels {
				for _, n := range sizes {
					f := Format{SampleRate: rate, BitsPerSample: depth, NumChannels: ch}
					h, err := ParseHeaderBytes(BuildHeader(f, n))
					if err != nil {
						t.Fatalf("%s/%d: parse failed: %v", f, n, err)
					}
					if h.Format != f || h.DataSize != n || h.DataOffset != HeaderSize {
						t.Fatalf("%s/%d: got %+v", f, n, h)
					}
				}
			}
		}
	}
}

func TestParseHeaderErrors(t *testing.T) {
	valid := BuildHeader(DefaultFormat(), 0)

	badRIFF := append([]byte{}, valid...)
	copy(badRIFF[0:4], "RIFX")

	badWAVE := append([]byte{}, valid...)
	copy(badWAVE[8:12], "AVI ")

	// Preamble followed directly by a data chunk.
	dataFirst := append([]byte{}, valid[0:12]...)
	dataFirst = append(dataFirst, valid[36:44]...)

	// Preamble and fmt chunk only.
	noData := append([]byte{}, valid[0:36]...)

	shortFmt := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(shortFmt[16:20], 14)

	zeroRate := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(zeroRate[24:28], 0)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedContainer},
		{"truncated preamble", valid[:8], ErrMalformedContainer},
		{"bad riff tag", badRIFF, ErrMalformedContainer},
		{"bad wave tag", badWAVE, ErrMalformedContainer},
		{"preamble only", valid[:12], ErrMissingFormatChunk},
		{"data before fmt", dataFirst, ErrMissingFormatChunk},
		{"no data chunk", noData, ErrMissingDataChunk},
		{"fmt too short", shortFmt, ErrMalformedContainer},
		{"zero sample rate", zeroRate, ErrMalformedContainer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeaderBytes(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseHeaderSkipsUnknownChunksAndFmtExtension(t *testing.T) {
	f := Format{SampleRate: 48000, BitsPerSample: 24, NumChannels: 2}
	pcm := []byte{1, 2, 3, 4, 5, 6}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteString("WAVE")

	// LIST chunk with odd size, padded to even.
	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(3))
	buf.Write([]byte{'a', 'b', 'c', 0})

	// 18-byte fmt chunk with cbSize extension.
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(18))
	binary.Write(&buf, binary.LittleEndian, uint16(FormatPCM))
	binary.Write(&buf, binary.LittleEndian, f.NumChannels)
	binary.Write(&buf, binary.LittleEndian, f.SampleRate)
	binary.Write(&buf, binary.LittleEndian, f.ByteRate())
	binary.Write(&buf, binary.LittleEndian, f.BlockAlign())
	binary.Write(&buf, binary.LittleEndian, f.BitsPerSample)
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	buf.WriteString("fact")
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	binary.Write(&buf, binary.LittleEndian, uint32(1))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	offset := buf.Len()
	buf.Write(pcm)

	h, err := ParseHeaderBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if h.Format != f {
		t.Errorf("format = %+v, want %+v", h.Format, f)
	}
	if h.DataOffset != int64(offset) {
		t.Errorf("data offset = %d, want %d", h.DataOffset, offset)
	}
	if h.DataSize != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", h.DataSize, len(pcm))
	}

	decoded, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded.Data, pcm) {
		t.Errorf("decoded payload = %v, want %v", decoded.Data, pcm)
	}
}

func TestReadSamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	pcm := []byte{0x10, 0x20, 0x30, 0x40}
	if err := os.WriteFile(path, Wrap(pcm, DefaultFormat()), 0o644); err != nil {
		t.Fatal(err)
	}

	header, err := ReadHeaderFile(path)
	if err != nil {
		t.Fatalf("ReadHeaderFile failed: %v", err)
	}
	data, err := ReadSamples(path, header)
	if err != nil {
		t.Fatalf("ReadSamples failed: %v", err)
	}
	if header.DataSize != 4 || !bytes.Equal(data, pcm) {
		t.Fatalf("unexpected payload %v (header %+v)", data, header)
	}

	truncated := filepath.Join(dir, "short.wav")
	data = Wrap(pcm, DefaultFormat())
	if err := os.WriteFile(truncated, data[:len(data)-2], 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeaderFile(truncated)
	if err != nil {
		t.Fatalf("header of truncated file should parse: %v", err)
	}
	if _, err := ReadSamples(truncated, h); !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer for short payload, got %v", err)
	}
}

func TestDecodeRejectsOverlongDataChunk(t *testing.T) {
	data := Wrap([]byte{1, 2}, DefaultFormat())
	binary.LittleEndian.PutUint32(data[40:44], 100)
	if _, err := Decode(data); !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestSilenceBytes(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		seconds float64
		want    int
	}{
		{"mono 16-bit 1.5s", Format{24000, 16, 1}, 1.5, 72000},
		{"stereo 16-bit 1s", Format{44100, 16, 2}, 1, 176400},
		{"rounds to nearest sample", Format{22050, 16, 1}, 0.0001, 4},
		{"24-bit", Format{48000, 24, 2}, 0.5, 144000},
		{"zero pause", Format{24000, 16, 1}, 0, 0},
		{"negative pause", Format{24000, 16, 1}, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SilenceBytes(tt.format, tt.seconds); got != tt.want {
				t.Errorf("SilenceBytes = %d, want %d", got, tt.want)
			}
			if got := len(Silence(tt.format, tt.seconds)); got != tt.want {
				t.Errorf("len(Silence) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatValidate(t *testing.T) {
	if err := DefaultFormat().Validate(); err != nil {
		t.Fatalf("default format invalid: %v", err)
	}
	for _, f := range []Format{
		{SampleRate: 0, BitsPerSample: 16, NumChannels: 1},
		{SampleRate: 24000, BitsPerSample: 12, NumChannels: 1},
		{SampleRate: 24000, BitsPerSample: 16, NumChannels: 0},
	} {
		if err := f.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", f)
		}
	}
}

func TestBufferCloneIsIndependent(t *testing.T) {
	orig := Buffer{Format: DefaultFormat(), Data: []byte{1, 2, 3}}
	clone := orig.Clone()
	clone.Data[0] = 9
	if orig.Data[0] != 1 {
		t.Fatal("clone shares storage with original")
	}
}
