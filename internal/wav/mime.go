package wav

import (
	"strconv"
	"strings"
)

var nativeTypes = map[string]struct{}{
	"audio/wav":      {},
	"audio/x-wav":    {},
	"audio/wave":     {},
	"audio/vnd.wave": {},
	"wav":            {},
	".wav":           {},
}

// IsNative reports whether tag names a RIFF/WAVE payload.
func IsNative(tag string) bool {
	mediaType, _, _ := strings.Cut(tag, ";")
	_, ok := nativeTypes[strings.ToLower(strings.TrimSpace(mediaType))]
	return ok
}

// ParseMIMEType inspects a synthesis format tag. Native WAV tags report
// native=true and the zero Format; the caller reads the format from the
// container itself. Any other tag is treated as headerless PCM and the
// returned Format starts from DefaultFormat, overridden by an audio/L<bits>
// media type and rate= or channels= parameters, e.g. "audio/L16;codec=pcm;rate=24000".
func ParseMIMEType(tag string) (format Format, native bool) {
	if IsNative(tag) {
		return Format{}, true
	}

	format = DefaultFormat()
	for _, part := range strings.Split(tag, ";") {
		param := strings.TrimSpace(part)
		lower := strings.ToLower(param)
		switch {
		case strings.HasPrefix(lower, "rate="):
			if v, err := strconv.ParseUint(strings.TrimSpace(param[len("rate="):]), 10, 32); err == nil && v > 0 {
				format.SampleRate = uint32(v)
			}
		case strings.HasPrefix(lower, "channels="):
			if v, err := strconv.ParseUint(strings.TrimSpace(param[len("channels="):]), 10, 16); err == nil && v > 0 {
				format.NumChannels = uint16(v)
			}
		case strings.HasPrefix(lower, "audio/l"):
			if v, err := strconv.ParseUint(param[len("audio/l"):], 10, 16); err == nil {
				switch v {
				case 8, 16, 24, 32:
					format.BitsPerSample = uint16(v)
				}
			}
		}
	}
	return format, false
}
