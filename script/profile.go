package script

import (
	"math"
	"sort"
)

// Counts holds classifiable code point counts per category.
type Counts map[Category]int

// Count tallies countable categories; unclassifiable and provisional entries are ignored.
func Count(categories []Category) Counts {
	counts := Counts{}
	for _, category := range categories {
		if category.Countable() {
			counts[category]++
		}
	}
	return counts
}

// Total returns the number of classifiable code points.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Profile maps a category to its percentage of classifiable characters,
// rounded half-up to one decimal place.
type Profile map[Category]float64

// Aggregate converts counts into a Profile. Zero classifiable characters yield an empty Profile.
// Categories whose share rounds to 0.0 are omitted.
func Aggregate(counts Counts) Profile {
	profile := Profile{}
	total := counts.Total()
	if total == 0 {
		return profile
	}
	for category, n := range counts {
		if n == 0 || !category.Countable() {
			continue
		}
		if tenths := roundHalfUp(int64(n)*1000, int64(total)); tenths > 0 {
			profile[category] = tenthsToPercent(tenths)
		}
	}
	return profile
}

// Analyze classifies text and returns its Profile with the underlying counts.
func Analyze(text string) (Profile, Counts) {
	counts := Count(ClassifyText(text))
	return Aggregate(counts), counts
}

// ClassifyTextWithProportions returns category identifier to percentage for text.
func ClassifyTextWithProportions(text string) map[string]float64 {
	profile, _ := Analyze(text)
	return profile.Names()
}

// Names returns the profile keyed by category identifiers.
func (p Profile) Names() map[string]float64 {
	result := make(map[string]float64, len(p))
	for category, pct := range p {
		result[category.String()] = pct
	}
	return result
}

// Categories returns the profile categories ordered by identifier.
func (p Profile) Categories() []Category {
	result := make([]Category, 0, len(p))
	for category := range p {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].String() < result[j].String() })
	return result
}

// Dominant returns the category with the highest proportion; ties resolve to the
// lexicographically first identifier. An empty profile returns Unclassifiable and 0.
func (p Profile) Dominant() (Category, float64) {
	dominant, best := Unclassifiable, -1.0
	for _, category := range p.Categories() {
		if pct := p[category]; pct > best {
			dominant, best = category, pct
		}
	}
	if best < 0 {
		return Unclassifiable, 0
	}
	return dominant, best
}

// Has reports whether any of the categories is present.
func (p Profile) Has(categories ...Category) bool {
	for _, category := range categories {
		if p[category] > 0 {
			return true
		}
	}
	return false
}

// Weighted returns the weighted average of profiles, weights being classifiable
// character counts. Profiles with zero weight and categories rounding to 0.0 are ignored.
func Weighted(profiles []Profile, weights []int) Profile {
	sums := map[Category]int64{}
	var total int64
	for i, profile := range profiles {
		if i >= len(weights) || weights[i] <= 0 {
			continue
		}
		w := int64(weights[i])
		total += w
		for category, pct := range profile {
			sums[category] += percentToTenths(pct) * w
		}
	}
	result := Profile{}
	if total == 0 {
		return result
	}
	for category, sum := range sums {
		if tenths := roundHalfUp(sum, total); tenths > 0 {
			result[category] = tenthsToPercent(tenths)
		}
	}
	return result
}

// roundHalfUp returns numerator/denominator rounded half-up, for non-negative operands.
func roundHalfUp(numerator, denominator int64) int64 {
	return (2*numerator + denominator) / (2 * denominator)
}

func percentToTenths(pct float64) int64 {
	return int64(math.Round(pct * 10))
}

func tenthsToPercent(tenths int64) float64 {
	return float64(tenths) / 10
}
