package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultLongBlockThreshold is the length in characters above which a block
// that still contains single newlines is split on them.
const DefaultLongBlockThreshold = 500

var (
	blankLineSplit  = regexp.MustCompile(`\n[\s\p{Z}\x{85}]*\n`)
	singleLineSplit = regexp.MustCompile(`\n+`)
)

// Chapter is one addressable section of a document.
type Chapter struct {
	Title string `json:"title"`
	// Content is the chapter body with its heading removed.
	Content string `json:"content"`
	// Paragraphs are the synthesis units in reading order. For marked and
	// preface chapters the title is paragraph 0.
	Paragraphs []string `json:"paragraphs"`
}

// Segmenter splits documents according to a MarkerPolicy.
type Segmenter struct {
	policy    MarkerPolicy
	threshold int
}

// Option customizes a Segmenter.
type Option func(*Segmenter)

// WithLongBlockThreshold overrides DefaultLongBlockThreshold.
func WithLongBlockThreshold(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// New returns a Segmenter using policy.
func New(policy MarkerPolicy, opts ...Option) *Segmenter {
	s := &Segmenter{policy: policy, threshold: DefaultLongBlockThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the marker policy in use.
func (s *Segmenter) Policy() MarkerPolicy {
	return s.policy
}

// Segment splits text into ordered chapters. A document containing only
// whitespace yields no chapters. Any text before the first marker, even
// blank lines, becomes a preface chapter.
func (s *Segmenter) Segment(text string) []Chapter {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	matches := s.policy.Pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		full := strings.TrimSpace(text)
		return []Chapter{{
			Title:      s.policy.WholeDocumentTitle,
			Content:    full,
			Paragraphs: s.SplitParagraphs(full),
		}}
	}

	chapters := make([]Chapter, 0, len(matches)+1)
	if first := matches[0][0]; first > 0 {
		chapters = append(chapters, s.titled(s.policy.PrefaceTitle, strings.TrimSpace(text[:first])))
	}

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		title := strings.TrimSpace(text[m[0]:m[1]])
		content := strings.TrimSpace(strings.Replace(text[m[0]:end], title, "", 1))
		chapters = append(chapters, s.titled(title, content))
	}
	return chapters
}

func (s *Segmenter) titled(title, content string) Chapter {
	paragraphs := append([]string{title}, s.SplitParagraphs(content)...)
	return Chapter{Title: title, Content: content, Paragraphs: paragraphs}
}

// SplitParagraphs splits text on blank lines. Blocks longer than the
// threshold that still contain newlines are split again on those newlines.
// If nothing survives, the trimmed text is returned as the only element;
// empty input yields an empty slice.
func (s *Segmenter) SplitParagraphs(text string) []string {
	return SplitParagraphs(text, s.threshold)
}

// SplitParagraphs is the Segmenter-independent form of Segmenter.SplitParagraphs.
func SplitParagraphs(text string, threshold int) []string {
	if text == "" {
		return []string{}
	}
	if threshold <= 0 {
		threshold = DefaultLongBlockThreshold
	}

	var result []string
	for _, block := range blankLineSplit.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if utf8.RuneCountInString(block) > threshold && strings.Contains(block, "\n") {
			for _, line := range singleLineSplit.Split(block, -1) {
				if line = strings.TrimSpace(line); line != "" {
					result = append(result, line)
				}
			}
			continue
		}
		result = append(result, block)
	}
	if len(result) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return result
}
