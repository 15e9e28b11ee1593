package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Header is the parsed view of a WAV file's structure.
type Header struct {
	Format Format
	// AudioFormat is the fmt chunk format code (1 for PCM).
	AudioFormat uint16
	// DataOffset is the absolute byte offset of the first PCM byte.
	DataOffset int64
	// DataSize is the declared length of the data chunk.
	DataSize uint32
}

// ParseHeader walks the RIFF chunks of r until the data chunk is found.
// On success r is positioned at the first PCM byte.
func ParseHeader(r io.ReadSeeker) (Header, error) {
	var preamble [preambleSize]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return Header{}, fmt.Errorf("%w: read preamble: %v", ErrMalformedContainer, err)
	}
	if string(preamble[0:4]) != "RIFF" || string(preamble[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("%w: missing RIFF/WAVE tags", ErrMalformedContainer)
	}

	var (
		header  Header
		haveFmt bool
		offset  int64 = preambleSize
	)
	for {
		var chunk [chunkHeaderSize]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if !haveFmt {
					return Header{}, ErrMissingFormatChunk
				}
				return Header{}, ErrMissingDataChunk
			}
			return Header{}, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])
		offset += chunkHeaderSize

		switch id {
		case "fmt ":
			if size < minFmtChunkSize {
				return Header{}, fmt.Errorf("%w: fmt chunk is %d bytes", ErrMalformedContainer, size)
			}
			var body [minFmtChunkSize]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return Header{}, fmt.Errorf("%w: read fmt chunk: %v", ErrMalformedContainer, err)
			}
			header.AudioFormat = binary.LittleEndian.Uint16(body[0:2])
			header.Format = Format{
				NumChannels:   binary.LittleEndian.Uint16(body[2:4]),
				SampleRate:    binary.LittleEndian.Uint32(body[4:8]),
				BitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
			}
			if err := header.Format.Validate(); err != nil {
				return Header{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
			}
			haveFmt = true
			rest := int64(size) - minFmtChunkSize + int64(size&1)
			if rest > 0 {
				if _, err := r.Seek(rest, io.SeekCurrent); err != nil {
					return Header{}, fmt.Errorf("skip fmt extension: %w", err)
				}
			}
			offset += int64(size) + int64(size&1)
		case "data":
			if !haveFmt {
				return Header{}, ErrMissingFormatChunk
			}
			header.DataOffset = offset
			header.DataSize = size
			return header, nil
		default:
			skip := int64(size) + int64(size&1)
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return Header{}, fmt.Errorf("skip %q chunk: %w", id, err)
			}
			offset += skip
		}
	}
}

// ParseHeaderBytes parses the header of an in-memory WAV file.
func ParseHeaderBytes(data []byte) (Header, error) {
	return ParseHeader(bytes.NewReader(data))
}

// ReadHeaderFile parses the header of the WAV file at path.
func ReadHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return ParseHeader(f)
}

// ReadSamples returns exactly header.DataSize payload bytes from the file at path.
func ReadSamples(path string, header Header) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(header.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to data: %w", err)
	}
	data := make([]byte, header.DataSize)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("%w: read %d data bytes: %v", ErrMalformedContainer, header.DataSize, err)
	}
	return data, nil
}

// Decode parses an in-memory WAV file into a Buffer that shares data's storage.
func Decode(data []byte) (Buffer, error) {
	header, err := ParseHeaderBytes(data)
	if err != nil {
		return Buffer{}, err
	}
	end := header.DataOffset + int64(header.DataSize)
	if end > int64(len(data)) {
		return Buffer{}, fmt.Errorf("%w: data chunk declares %d bytes, %d present",
			ErrMalformedContainer, header.DataSize, int64(len(data))-header.DataOffset)
	}
	return Buffer{Format: header.Format, Data: data[header.DataOffset:end]}, nil
}

// BuildHeader returns the canonical 44-byte header for dataSize payload bytes.
func BuildHeader(f Format, dataSize uint32) []byte {
	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], minFmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], FormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], f.NumChannels)
	binary.LittleEndian.PutUint32(header[24:28], f.SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], f.ByteRate())
	binary.LittleEndian.PutUint16(header[32:34], f.BlockAlign())
	binary.LittleEndian.PutUint16(header[34:36], f.BitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	return header
}

// Wrap prefixes raw PCM with a canonical header.
func Wrap(pcm []byte, f Format) []byte {
	out := make([]byte, 0, HeaderSize+len(pcm))
	out = append(out, BuildHeader(f, uint32(len(pcm)))...)
	return append(out, pcm...)
}

// Encode writes b to w as a WAV file.
func Encode(w io.Writer, b Buffer) error {
	if _, err := w.Write(BuildHeader(b.Format, uint32(len(b.Data)))); err != nil {
		return err
	}
	_, err := w.Write(b.Data)
	return err
}
