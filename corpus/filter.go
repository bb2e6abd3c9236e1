package corpus

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/passage"
	"github.com/viant/langprobe/script"
)

// Match is a passage selected by a corpus filter.
type Match struct {
	Document string          `json:"document"`
	Passage  passage.Passage `json:"passage"`
}

var characterAliases = map[string][]script.Category{
	"japanese": {script.Japanese, script.HanJapanese},
	"kana":     {script.Japanese},
	"chinese":  {script.HanChinese},
	"han":      {script.HanJapanese, script.HanChinese},
	"kanji":    {script.HanJapanese, script.HanChinese},
	"russian":  {script.Cyrillic},
}

// CharacterTypes resolves category ids and aliases.
func CharacterTypes(names []string) ([]script.Category, error) {
	var result []script.Category
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if categories, ok := characterAliases[key]; ok {
			result = append(result, categories...)
			continue
		}
		category, ok := script.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown character type %q", ErrInput, name)
		}
		result = append(result, category)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no character types", ErrInput)
	}
	return result, nil
}

// FilterByCharacters returns passages of at least minLength runes containing any of the character types.
func FilterByCharacters(report *Report, types []string, minLength int) ([]Match, error) {
	categories, err := CharacterTypes(types)
	if err != nil {
		return nil, err
	}
	return collect(report, func(p *passage.Passage) bool {
		return longEnough(p, minLength) && p.Profile.Has(categories...)
	}), nil
}

// LanguageCriteria selects confident passages; Threshold and MinMargin are percentages.
type LanguageCriteria struct {
	Threshold float64 `json:"threshold"`
	MinMargin float64 `json:"minMargin"`
	MinLength int     `json:"minLength"`
}

// FilterByLanguage returns passages whose top language is one of languages with enough
// confidence, margin over the runner up and length.
func FilterByLanguage(report *Report, languages []string, criteria LanguageCriteria) ([]Match, error) {
	if criteria.Threshold < 0 || criteria.Threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %v outside [0,100]", ErrInput, criteria.Threshold)
	}
	wanted := map[string]bool{}
	for _, language := range languages {
		if code := langid.Canonical(language); code != "" {
			wanted[code] = true
		}
	}
	if len(wanted) == 0 {
		return nil, fmt.Errorf("%w: no languages", ErrInput)
	}
	return collect(report, func(p *passage.Passage) bool {
		top, ok := p.Languages.Top()
		if !ok || !wanted[top.Code] || !longEnough(p, criteria.MinLength) {
			return false
		}
		return top.Confidence*100 >= criteria.Threshold && p.Languages.Margin()*100 >= criteria.MinMargin
	}), nil
}

// ExtractLanguage returns the confident passages of a single language.
func ExtractLanguage(report *Report, language string, criteria LanguageCriteria) ([]Match, error) {
	return FilterByLanguage(report, []string{language}, criteria)
}

func collect(report *Report, accept func(p *passage.Passage) bool) []Match {
	result := make([]Match, 0)
	for _, entry := range report.Entries {
		if entry.Status != StatusAnalyzed {
			continue
		}
		for i := range entry.Passages {
			if accept(&entry.Passages[i]) {
				result = append(result, Match{Document: entry.ID, Passage: entry.Passages[i]})
			}
		}
	}
	return result
}

func longEnough(p *passage.Passage, minLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(p.Text)) >= minLength
}
