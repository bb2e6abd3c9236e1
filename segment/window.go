package segment

import (
	"unicode"
	"unicode/utf8"
)

const defaultWindowSize = 500

// WindowSplitter splits text into windows of at most size runes.
// A window ends after the last whitespace of its second half when there is one, so words stay whole.
type WindowSplitter struct {
	size int
}

// NewWindowSplitter creates a WindowSplitter
func NewWindowSplitter(size int) *WindowSplitter {
	if size <= 0 {
		size = defaultWindowSize
	}
	return &WindowSplitter{size: size}
}

// Split splits text into windows
func (s *WindowSplitter) Split(text string) []Span {
	spans := make([]Span, 0)
	for start := 0; start < len(text); {
		end, breakAt, runes := start, -1, 0
		for end < len(text) && runes < s.size {
			r, width := utf8.DecodeRuneInString(text[end:])
			end += width
			runes++
			if unicode.IsSpace(r) && runes > s.size/2 {
				breakAt = end
			}
		}
		if end < len(text) && breakAt != -1 {
			end = breakAt
		}
		spans = append(spans, newSpan(text, start, end))
		start = end
	}
	return spans
}
