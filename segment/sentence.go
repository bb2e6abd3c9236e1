package segment

import (
	"github.com/clipperhouse/uax29/v2/sentences"
)

// SentenceSplitter splits text at UAX #29 sentence boundaries.
// Trailing whitespace stays with the preceding sentence.
type SentenceSplitter struct{}

// NewSentenceSplitter creates a SentenceSplitter
func NewSentenceSplitter() *SentenceSplitter {
	return &SentenceSplitter{}
}

// Split splits text into sentences
func (s *SentenceSplitter) Split(text string) []Span {
	spans := make([]Span, 0)
	if text == "" {
		return spans
	}
	iter := sentences.FromString(text)
	for iter.Next() {
		spans = append(spans, newSpan(text, iter.Start(), iter.End()))
	}
	return spans
}
