package segment

import "strings"

// ParagraphSplitter splits text at blank lines. Blank lines belong to the preceding paragraph,
// leading blank lines to the first one.
type ParagraphSplitter struct{}

// NewParagraphSplitter creates a ParagraphSplitter
func NewParagraphSplitter() *ParagraphSplitter {
	return &ParagraphSplitter{}
}

// Split splits text into paragraphs
func (s *ParagraphSplitter) Split(text string) []Span {
	spans := make([]Span, 0)
	start := 0
	hasContent, hasBlank := false, false
	forEachLine(text, func(lineStart, lineEnd int) {
		blank := strings.TrimSpace(text[lineStart:lineEnd]) == ""
		if !blank && hasContent && hasBlank {
			spans = append(spans, newSpan(text, start, lineStart))
			start = lineStart
			hasBlank = false
		}
		if blank {
			hasBlank = hasContent
			return
		}
		hasContent = true
	})
	if start < len(text) {
		spans = append(spans, newSpan(text, start, len(text)))
	}
	return spans
}

// LineBlockSplitter groups a fixed number of non-empty lines per span.
// Empty lines stay with the preceding block.
type LineBlockSplitter struct {
	blockSize int
}

// NewLineBlockSplitter creates a LineBlockSplitter
func NewLineBlockSplitter(blockSize int) *LineBlockSplitter {
	if blockSize <= 0 {
		blockSize = 1
	}
	return &LineBlockSplitter{blockSize: blockSize}
}

// Split splits text into blocks of lines
func (s *LineBlockSplitter) Split(text string) []Span {
	spans := make([]Span, 0)
	start, count := 0, 0
	forEachLine(text, func(lineStart, lineEnd int) {
		if strings.TrimSpace(text[lineStart:lineEnd]) == "" {
			return
		}
		if count == s.blockSize {
			spans = append(spans, newSpan(text, start, lineStart))
			start, count = lineStart, 0
		}
		count++
	})
	if start < len(text) {
		spans = append(spans, newSpan(text, start, len(text)))
	}
	return spans
}

// forEachLine calls fn with the bounds of every line, terminator included.
func forEachLine(text string, fn func(start, end int)) {
	for start := 0; start < len(text); {
		end := len(text)
		if i := strings.IndexByte(text[start:], '\n'); i != -1 {
			end = start + i + 1
		}
		fn(start, end)
		start = end
	}
}
