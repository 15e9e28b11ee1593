// Package wav parses and builds linear-PCM RIFF/WAVE containers.
//
// Every file narrator writes uses the canonical 44-byte header produced by
// BuildHeader. Parsing is tolerant of real-world files: unknown chunks are
// skipped by their declared size and fmt chunks longer than 16 bytes are
// accepted with the extension bytes ignored. Failures are reported through
// the ErrMalformedContainer, ErrMissingFormatChunk and ErrMissingDataChunk
// sentinels so callers can decide whether to skip a file or abort.
//
// The package performs no transcoding; compressed payloads are out of scope.
package wav
