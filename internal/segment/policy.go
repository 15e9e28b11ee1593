package segment

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Locale names accepted by Preset.
const (
	LocaleChinese = "zh"
	LocaleEnglish = "en"
	LocaleCustom  = "custom"
)

const (
	chineseMarkerPattern = `第[0-9０-９零〇一二两三四五六七八九十百千万]+章[^\n]*`

	englishNumberWord = `one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety|hundred`

	englishMarkerPattern = `(?im)^[ \t]*chapter[ \t]+(?:\d+|[ivxlcdm]+|(?:` + englishNumberWord + `)(?:[- ](?:` + englishNumberWord + `))?)\b[^\n]*`
)

// MarkerPolicy decides where chapters begin and how synthetic chapters are titled.
type MarkerPolicy struct {
	// Pattern matches one chapter heading, including any trailing heading
	// text on the same line.
	Pattern *regexp.Regexp
	// PrefaceTitle names the chapter holding text before the first heading.
	PrefaceTitle string
	// WholeDocumentTitle names the single chapter of a document without headings.
	WholeDocumentTitle string
}

var presets = map[string]struct {
	pattern string
	preface string
	whole   string
}{
	LocaleChinese: {chineseMarkerPattern, "前言", "全文"},
	LocaleEnglish: {englishMarkerPattern, "Preface", "Full Text"},
}

// Preset returns the built-in policy for locale.
func Preset(locale string) (MarkerPolicy, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(locale))]
	if !ok {
		return MarkerPolicy{}, fmt.Errorf("unknown segmentation locale %q (known: %s)", locale, strings.Join(Locales(), ", "))
	}
	return NewMarkerPolicy(p.pattern, p.preface, p.whole)
}

// Locales lists the built-in preset names.
func Locales() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPolicy returns the Chinese preset.
func DefaultPolicy() MarkerPolicy {
	policy, err := Preset(LocaleChinese)
	if err != nil {
		panic(err)
	}
	return policy
}

// NewMarkerPolicy compiles a custom heading pattern.
func NewMarkerPolicy(pattern, prefaceTitle, wholeDocumentTitle string) (MarkerPolicy, error) {
	if strings.TrimSpace(pattern) == "" {
		return MarkerPolicy{}, errors.New("marker pattern is empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return MarkerPolicy{}, fmt.Errorf("compile marker pattern: %w", err)
	}
	if re.MatchString("") {
		return MarkerPolicy{}, fmt.Errorf("marker pattern %q matches the empty string", pattern)
	}
	prefaceTitle = strings.TrimSpace(prefaceTitle)
	wholeDocumentTitle = strings.TrimSpace(wholeDocumentTitle)
	if prefaceTitle == "" || wholeDocumentTitle == "" {
		return MarkerPolicy{}, errors.New("preface and whole-document titles are required")
	}
	return MarkerPolicy{
		Pattern:            re,
		PrefaceTitle:       prefaceTitle,
		WholeDocumentTitle: wholeDocumentTitle,
	}, nil
}
