package ingest

// Stats tracks a corpus load.
type Stats struct {
	Total     int `json:"total"`
	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
