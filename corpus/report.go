package corpus

import (
	"sort"
	"time"

	"github.com/viant/langprobe/passage"
)

// Status is the outcome of a document.
type Status string

const (
	// StatusAnalyzed marks a processed document, possibly with zero confident passages.
	StatusAnalyzed Status = "analyzed"
	// StatusFailed marks a document that could not be processed.
	StatusFailed Status = "failed"
)

// Entry is the result of one document.
type Entry struct {
	ID       string            `json:"id"`
	Status   Status            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Cached   bool              `json:"cached,omitempty"`
	Passages []passage.Passage `json:"passages"`
	err      error
}

// Err returns the failure cause, nil for analyzed documents.
func (e *Entry) Err() error {
	return e.err
}

func (e *Entry) fail(err error) {
	e.Status = StatusFailed
	e.Error = err.Error()
	e.err = err
	e.Passages = []passage.Passage{}
}

// Report holds every document outcome in input order.
type Report struct {
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Entries  []*Entry  `json:"entries"`
}

// Passages returns document id to passages for analyzed documents.
func (r *Report) Passages() map[string][]passage.Passage {
	result := make(map[string][]passage.Passage, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.Status == StatusAnalyzed {
			result[entry.ID] = entry.Passages
		}
	}
	return result
}

// Entry returns the entry of a document id.
func (r *Report) Entry(id string) (*Entry, bool) {
	for _, entry := range r.Entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return nil, false
}

// Failed returns failed entries.
func (r *Report) Failed() []*Entry {
	var result []*Entry
	for _, entry := range r.Entries {
		if entry.Status == StatusFailed {
			result = append(result, entry)
		}
	}
	return result
}

// IDs returns analyzed document ids sorted.
func (r *Report) IDs() []string {
	var result []string
	for _, entry := range r.Entries {
		if entry.Status == StatusAnalyzed {
			result = append(result, entry.ID)
		}
	}
	sort.Strings(result)
	return result
}
