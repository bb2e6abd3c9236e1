package langid

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

const labelPrefix = "__label__"

// Entry is a language code with its confidence in [0,1].
type Entry struct {
	Code       string  `json:"code" yaml:"code"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// List is ordered by descending confidence, ties by ascending code, without duplicate codes.
type List []Entry

// Canonical normalizes a model label into a language code:
// the fastText "__label__" prefix is removed and BCP 47 tags are canonicalized.
func Canonical(label string) string {
	code := strings.TrimSpace(label)
	code = strings.TrimPrefix(code, labelPrefix)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		return tag.String()
	}
	return strings.ToLower(code)
}

// Normalize turns raw predictions into a List: labels are canonicalized, confidences clamped,
// entries sorted and deduplicated, then filtered by minConfidence before truncating to topK
// (topK <= 0 keeps everything).
func Normalize(predictions []Prediction, minConfidence float64, topK int) List {
	entries := make(List, 0, len(predictions))
	for _, prediction := range predictions {
		code := Canonical(prediction.Label)
		if code == "" || math.IsNaN(prediction.Confidence) {
			continue
		}
		entries = append(entries, Entry{Code: code, Confidence: clamp(prediction.Confidence)})
	}
	return entries.normalize(minConfidence, topK)
}

func (l List) normalize(minConfidence float64, topK int) List {
	sorted := make(List, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Code < sorted[j].Code
	})
	result := make(List, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, entry := range sorted {
		if seen[entry.Code] {
			continue
		}
		seen[entry.Code] = true
		if entry.Confidence < minConfidence {
			continue
		}
		result = append(result, entry)
		if topK > 0 && len(result) == topK {
			break
		}
	}
	return result
}

// Top returns the dominant entry.
func (l List) Top() (Entry, bool) {
	if len(l) == 0 {
		return Entry{}, false
	}
	return l[0], true
}

// Margin returns the confidence difference between the first and second entries.
func (l List) Margin() float64 {
	switch len(l) {
	case 0:
		return 0
	case 1:
		return l[0].Confidence
	}
	return l[0].Confidence - l[1].Confidence
}

// Confidence returns the confidence recorded for code, or 0.
func (l List) Confidence(code string) float64 {
	for _, entry := range l {
		if entry.Code == code {
			return entry.Confidence
		}
	}
	return 0
}

// Weighted returns the weighted average of lists (weights are text lengths), normalized with
// the supplied threshold and cutoff. Absent codes contribute zero confidence.
func Weighted(lists []List, weights []int, minConfidence float64, topK int) List {
	sums := map[string]float64{}
	total := 0
	var codes []string
	for i, list := range lists {
		if i >= len(weights) || weights[i] <= 0 {
			continue
		}
		total += weights[i]
		for _, entry := range list {
			if _, ok := sums[entry.Code]; !ok {
				codes = append(codes, entry.Code)
			}
			sums[entry.Code] += entry.Confidence * float64(weights[i])
		}
	}
	if total == 0 {
		return List{}
	}
	sort.Strings(codes)
	merged := make(List, 0, len(codes))
	for _, code := range codes {
		merged = append(merged, Entry{Code: code, Confidence: clamp(sums[code] / float64(total))})
	}
	return merged.normalize(minConfidence, topK)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
