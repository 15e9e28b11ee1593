// Package concat joins unit WAV files into one chapter file with silent
// pauses between them.
//
// Two strategies implement Concatenator. The native strategy streams PCM
// payloads behind a single canonical header. The goaudio strategy decodes
// each clip into sample buffers with github.com/go-audio/wav and re-encodes
// the joined buffer. Both apply the same input filtering: missing or
// unparseable files and files whose format differs from the first valid one
// are skipped and reported, never mixed in. Fallback composes two strategies.
package concat
