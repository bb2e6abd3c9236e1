// Package filter removes or extracts characters by script, math notation and code.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/viant/langprobe/notation"
	"github.com/viant/langprobe/script"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownScript is returned for a script name that resolves to nothing.
var ErrUnknownScript = errors.New("unknown script")

// Matcher reports whether a code point belongs to a selection.
type Matcher func(r rune) bool

var aliases = map[string]Matcher{
	"hiragana": inTables(unicode.Hiragana),
	"katakana": kana(inTables(unicode.Katakana)),
	"han":      inTables(unicode.Han),
	"chinese":  inTables(unicode.Han),
	"japanese": kana(inTables(unicode.Hiragana, unicode.Katakana, unicode.Han)),
	"korean":   inTables(unicode.Hangul),
}

// kana extends a matcher with the prolonged sound marks, which Unicode assigns to Common.
func kana(matcher Matcher) Matcher {
	return func(r rune) bool {
		return r == 0x30FC || r == 0xFF70 || matcher(r)
	}
}

func inTables(tables ...*unicode.RangeTable) Matcher {
	return func(r rune) bool {
		return unicode.IsOneOf(tables, r)
	}
}

// Resolve returns a matcher for a script name.
// Names are resolved as aliases, Unicode script names (case insensitive) and category ids in that order.
func Resolve(name string) (Matcher, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownScript)
	}
	if matcher, ok := aliases[key]; ok {
		return matcher, nil
	}
	for scriptName, table := range unicode.Scripts {
		if strings.EqualFold(scriptName, key) {
			return inTables(table), nil
		}
	}
	if category, ok := script.ParseCategory(key); ok {
		switch category {
		case script.HanJapanese, script.HanChinese:
			return aliases["han"], nil
		}
		return func(r rune) bool { return script.Classify(r) == category }, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownScript, name)
}

// ResolveAll returns a matcher accepting any of names, or nil when names is empty.
func ResolveAll(names []string) (Matcher, error) {
	var matchers []Matcher
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		matcher, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher)
	}
	if len(matchers) == 0 {
		return nil, nil
	}
	return func(r rune) bool {
		for _, matcher := range matchers {
			if matcher(r) {
				return true
			}
		}
		return false
	}, nil
}

// Names lists the accepted aliases and Unicode script names.
func Names() []string {
	var result []string
	for name := range aliases {
		result = append(result, name)
	}
	for name := range unicode.Scripts {
		result = append(result, strings.ToLower(name))
	}
	sort.Strings(result)
	return result
}

// Options selects what Remove and Extract act on.
type Options struct {
	Scripts []string
	Math    bool
	Code    bool
	// KeepWhitespace preserves whitespace in Extract.
	KeepWhitespace bool
}

type selection struct {
	scripts Matcher
	math    bool
	code    bool
	inCode  []bool
}

func newSelection(text string, options Options) (*selection, error) {
	matcher, err := ResolveAll(options.Scripts)
	if err != nil {
		return nil, err
	}
	ret := &selection{scripts: matcher, math: options.Math, code: options.Code}
	if options.Code {
		ret.inCode = make([]bool, len(text))
		for _, span := range notation.CodeSpans(text) {
			for i := span[0]; i < span[1]; i++ {
				ret.inCode[i] = true
			}
		}
	}
	return ret, nil
}

func (s *selection) empty() bool {
	return s.scripts == nil && !s.math && !s.code
}

func (s *selection) matches(offset int, r rune) bool {
	if s.code && (s.inCode[offset] || notation.IsCodeSymbol(r)) {
		return true
	}
	if s.math && notation.IsMathSymbol(r) {
		return true
	}
	return s.scripts != nil && s.scripts(r)
}

// Remove deletes selected characters from the NFC form of text.
// With nothing selected the normalized text is returned unchanged.
func Remove(text string, options Options) (string, error) {
	text = norm.NFC.String(text)
	selection, err := newSelection(text, options)
	if err != nil {
		return "", err
	}
	if selection.empty() {
		return text, nil
	}
	builder := strings.Builder{}
	for offset, r := range text {
		if !selection.matches(offset, r) {
			builder.WriteRune(r)
		}
	}
	return builder.String(), nil
}

// Extract keeps only selected characters of the NFC form of text.
// With nothing selected the result is empty.
func Extract(text string, options Options) (string, error) {
	text = norm.NFC.String(text)
	selection, err := newSelection(text, options)
	if err != nil {
		return "", err
	}
	if selection.empty() {
		return "", nil
	}
	builder := strings.Builder{}
	for offset, r := range text {
		if (options.KeepWhitespace && unicode.IsSpace(r)) || selection.matches(offset, r) {
			builder.WriteRune(r)
		}
	}
	return builder.String(), nil
}
