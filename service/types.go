package service

import (
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/ingest"
	"github.com/viant/langprobe/store"
)

// CorpusSpec defines a corpus root with optional filters.
type CorpusSpec struct {
	Name        string
	Path        string
	Include     []string
	Exclude     []string
	MaxFileSize int
}

// ResolveCorpusRequest specifies how a corpus root should be resolved.
type ResolveCorpusRequest struct {
	Name        string
	Path        string
	Include     []string
	Exclude     []string
	MaxFileSize int
}

// AnalyzeCorpusRequest defines inputs for a corpus run.
// Documents are analyzed as given; otherwise Corpus is loaded from storage.
type AnalyzeCorpusRequest struct {
	Corpus    CorpusSpec
	Documents []corpus.Document
	// Config overrides the configured analysis settings.
	Config *corpus.Config
	// Persist saves the run when a store is configured.
	Persist  bool
	Logf     func(format string, args ...any)
	Progress func(current, total int, id string)
}

// AnalyzeCorpusResult captures a corpus run.
type AnalyzeCorpusResult struct {
	Report      *corpus.Report      `json:"report"`
	Stats       *ingest.Stats       `json:"stats,omitempty"`
	Proportions *corpus.Proportions `json:"proportions"`
	Run         *store.Run          `json:"run,omitempty"`
}
