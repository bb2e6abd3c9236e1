package segment

// Span is a contiguous slice of a document, [Start, End) in bytes.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Splitter divides a document into ordered spans.
// Concatenating the span texts must reproduce the document exactly.
type Splitter interface {
	Split(text string) []Span
}

func newSpan(text string, start, end int) Span {
	return Span{Start: start, End: end, Text: text[start:end]}
}
