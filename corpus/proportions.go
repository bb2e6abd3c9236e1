package corpus

import (
	"math"
	"unicode/utf8"
)

// Proportions holds language shares in percent, weighted by passage length in runes.
type Proportions struct {
	Documents map[string]map[string]float64 `json:"documents"`
	Corpus    map[string]float64            `json:"corpus"`
}

// LanguageProportions computes per document and corpus wide language shares from passages
// with a dominant language. Documents without such passages map to an empty share set.
func LanguageProportions(report *Report) *Proportions {
	result := &Proportions{Documents: map[string]map[string]float64{}}
	corpus := map[string]int{}
	for id, passages := range report.Passages() {
		lengths := map[string]int{}
		for _, p := range passages {
			if p.Language == "" {
				continue
			}
			n := utf8.RuneCountInString(p.Text)
			lengths[p.Language] += n
			corpus[p.Language] += n
		}
		result.Documents[id] = shares(lengths)
	}
	result.Corpus = shares(corpus)
	return result
}

func shares(lengths map[string]int) map[string]float64 {
	total := 0
	for _, n := range lengths {
		total += n
	}
	result := make(map[string]float64, len(lengths))
	if total == 0 {
		return result
	}
	for code, n := range lengths {
		result[code] = math.Round(float64(n)/float64(total)*10000) / 100
	}
	return result
}
