package script

import (
	"fmt"
	"sort"
)

// Category represents a writing-system bucket assigned to a code point.
type Category uint8

const (
	// Unclassifiable covers whitespace, digits, punctuation and control characters.
	// It is never counted in a Profile.
	Unclassifiable Category = iota
	// Latin is used for Latin-based scripts (English, French, German, etc.)
	Latin
	// Japanese is used for Hiragana and Katakana.
	Japanese
	// HanJapanese is used for Han characters in a unit containing kana.
	HanJapanese
	// HanChinese is used for Han characters in a unit without kana.
	HanChinese
	// Korean is used for Hangul.
	Korean
	Cyrillic
	Arabic
	Hebrew
	Greek
	Devanagari
	Tamil
	Bengali
	Thai
	Armenian
	Georgian
	Ethiopic
	// Other is used for code points outside any recognized script bucket.
	Other

	// Han is a provisional category returned by Classify for Han code points.
	// ClassifyText resolves it to HanJapanese or HanChinese.
	Han
	// Mark is a provisional category returned by Classify for combining marks.
	// ClassifyText resolves it to the category of the preceding character.
	Mark
)

var categoryNames = [...]string{
	Unclassifiable: "unclassifiable",
	Latin:          "latin",
	Japanese:       "japanese",
	HanJapanese:    "han_japanese",
	HanChinese:     "han_chinese",
	Korean:         "korean",
	Cyrillic:       "cyrillic",
	Arabic:         "arabic",
	Hebrew:         "hebrew",
	Greek:          "greek",
	Devanagari:     "devanagari",
	Tamil:          "tamil",
	Bengali:        "bengali",
	Thai:           "thai",
	Armenian:       "armenian",
	Georgian:       "georgian",
	Ethiopic:       "ethiopic",
	Other:          "other",
	Han:            "han",
	Mark:           "mark",
}

// String returns the stable lowercase identifier of the category.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Countable reports whether the category contributes to proportions.
func (c Category) Countable() bool {
	return c > Unclassifiable && c <= Other
}

// MarshalText encodes the category as its identifier.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category identifier.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("script: unknown category %q", text)
	}
	*c = parsed
	return nil
}

// ParseCategory returns the countable category for the identifier.
func ParseCategory(name string) (Category, bool) {
	for i, candidate := range categoryNames {
		if candidate == name && Category(i).Countable() {
			return Category(i), true
		}
	}
	return Unclassifiable, false
}

// Categories returns all countable categories ordered by identifier.
func Categories() []Category {
	result := make([]Category, 0, int(Other))
	for c := Latin; c <= Other; c++ {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].String() < result[j].String() })
	return result
}
