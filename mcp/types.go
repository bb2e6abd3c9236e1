package mcp

import (
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/ingest"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/notation"
	"github.com/viant/langprobe/passage"
	"github.com/viant/langprobe/store"
)

type ClassifyTextInput struct {
	Text string `json:"text"`
}

type ClassifyTextOutput struct {
	Proportions map[string]float64 `json:"proportions"`
}

type DetectLanguageInput struct {
	Text          string   `json:"text"`
	TopK          int      `json:"top_k,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

type DetectLanguageOutput struct {
	Languages langid.List `json:"languages"`
}

type DetectNotationInput struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold,omitempty"`
}

type DetectCodeOutput struct {
	notation.CodeReport
}

type DetectMathOutput struct {
	notation.MathReport
}

// AnalysisInput overrides the configured analysis settings when any field is set.
type AnalysisInput struct {
	Granularity       string  `json:"granularity,omitempty"`
	ScriptThreshold   float64 `json:"script_threshold,omitempty"`
	LanguageThreshold float64 `json:"language_threshold,omitempty"`
	TopK              int     `json:"top_k,omitempty"`
	MinConfidence     float64 `json:"min_confidence,omitempty"`
	MinLength         int     `json:"min_length,omitempty"`
}

type AnalyzeTextInput struct {
	Text string `json:"text"`
	AnalysisInput
}

type AnalyzeTextOutput struct {
	Passages []passage.Passage `json:"passages"`
}

type AnalyzeCorpusInput struct {
	// Corpus names a configured corpus; Path analyzes an ad hoc location.
	Corpus      string   `json:"corpus,omitempty"`
	Path        string   `json:"path,omitempty"`
	Include     []string `json:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	MaxFileSize int      `json:"max_file_size,omitempty"`
	Persist     bool     `json:"persist,omitempty"`
	// Passages includes per document passages in the output.
	Passages bool `json:"passages,omitempty"`
	AnalysisInput
}

type DocumentSummary struct {
	ID       string            `json:"id"`
	Status   corpus.Status     `json:"status"`
	Error    string            `json:"error,omitempty"`
	Cached   bool              `json:"cached,omitempty"`
	Count    int               `json:"passage_count"`
	Passages []passage.Passage `json:"passages,omitempty"`
}

type AnalyzeCorpusOutput struct {
	Documents   []DocumentSummary   `json:"documents"`
	Stats       *ingest.Stats       `json:"stats,omitempty"`
	Proportions *corpus.Proportions `json:"proportions"`
	Run         *store.Run          `json:"run,omitempty"`
}
