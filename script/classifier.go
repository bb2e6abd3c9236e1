package script

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/norm"
)

const (
	prolongedSoundMark          = 0x30FC
	halfwidthProlongedSoundMark = 0xFF70
)

var scriptCategories = map[language.Script]Category{
	language.Latin:      Latin,
	language.Hiragana:   Japanese,
	language.Katakana:   Japanese,
	language.Han:        Han,
	language.Hangul:     Korean,
	language.Cyrillic:   Cyrillic,
	language.Arabic:     Arabic,
	language.Hebrew:     Hebrew,
	language.Greek:      Greek,
	language.Devanagari: Devanagari,
	language.Tamil:      Tamil,
	language.Bengali:    Bengali,
	language.Thai:       Thai,
	language.Armenian:   Armenian,
	language.Georgian:   Georgian,
	language.Ethiopic:   Ethiopic,
	language.Inherited:  Mark,
}

// Classify returns the category of a single code point.
// Han code points return the provisional Han category and combining marks return Mark;
// both need the enclosing text to be resolved, see ClassifyText.
func Classify(r rune) Category {
	if !IsClassifiable(r) {
		return Unclassifiable
	}
	if r == prolongedSoundMark || r == halfwidthProlongedSoundMark {
		return Japanese
	}
	if category, ok := scriptCategories[language.LookupScript(r)]; ok {
		return category
	}
	return Other
}

// IsClassifiable reports whether r counts towards script proportions.
func IsClassifiable(r rune) bool {
	switch {
	case unicode.IsSpace(r), unicode.IsNumber(r), unicode.IsPunct(r):
		return false
	case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		return false
	case r == unicode.ReplacementChar:
		return false
	}
	return true
}

// ClassifyText classifies every code point of the NFC normalized text.
// The first pass assigns per code point categories and records kana presence,
// the second pass resolves Han code points for the whole text: HanJapanese when
// the text has at least one kana code point, HanChinese otherwise.
// The returned slice is aligned with the runes of the normalized text.
func ClassifyText(text string) []Category {
	if text == "" {
		return nil
	}
	text = norm.NFC.String(text)
	categories := make([]Category, 0, len(text))
	hasKana := false
	previous := Unclassifiable
	for _, r := range text {
		category := Classify(r)
		switch category {
		case Mark:
			category = previous
			if category == Unclassifiable {
				category = Other
			}
		case Japanese:
			hasKana = true
		}
		categories = append(categories, category)
		previous = category
	}

	resolved := HanChinese
	if hasKana {
		resolved = HanJapanese
	}
	for i, category := range categories {
		if category == Han {
			categories[i] = resolved
		}
	}
	return categories
}
