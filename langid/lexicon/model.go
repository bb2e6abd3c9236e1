package lexicon

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"github.com/viant/langprobe/langid"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultLexicon []byte

// Lexicon lists frequent words per language code.
type Lexicon struct {
	Languages map[string][]string `yaml:"languages"`
}

// Model scores text against per-language frequent word lists.
// It is immutable after construction and safe for concurrent use.
type Model struct {
	words     map[string][]string
	languages []string
}

// New builds a model from a lexicon.
func New(lexicon *Lexicon) (*Model, error) {
	if lexicon == nil || len(lexicon.Languages) == 0 {
		return nil, fmt.Errorf("%w: lexicon has no languages", langid.ErrConfiguration)
	}
	m := &Model{words: map[string][]string{}}
	for code, words := range lexicon.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid language code %q: %v", langid.ErrConfiguration, code, err)
		}
		code = tag.String()
		m.languages = append(m.languages, code)
		seen := map[string]bool{}
		for _, word := range words {
			word = normalizeWord(word)
			if word == "" || seen[word] {
				continue
			}
			seen[word] = true
			m.words[word] = append(m.words[word], code)
		}
	}
	sort.Strings(m.languages)
	return m, nil
}

// Default returns the model built from the embedded lexicon.
func Default() (*Model, error) {
	return Parse(defaultLexicon)
}

// Parse builds a model from YAML lexicon data.
func Parse(data []byte) (*Model, error) {
	lexicon := &Lexicon{}
	if err := yaml.Unmarshal(data, lexicon); err != nil {
		return nil, fmt.Errorf("%w: failed to decode lexicon: %v", langid.ErrConfiguration, err)
	}
	return New(lexicon)
}

// Load reads a YAML lexicon from any afs supported location.
func Load(ctx context.Context, fs afs.Service, URL string) (*Model, error) {
	if fs == nil {
		fs = afs.New()
	}
	ok, err := fs.Exists(ctx, URL)
	if err != nil || !ok {
		return nil, fmt.Errorf("%w: lexicon %v not found", langid.ErrConfiguration, URL)
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read lexicon %v: %v", langid.ErrConfiguration, URL, err)
	}
	return Parse(data)
}

// Languages returns the supported language codes.
func (m *Model) Languages() []string {
	return m.languages
}

// Predict scores each language by the share of matched words.
// Confidences of all languages with at least one match sum to 1.
func (m *Model) Predict(ctx context.Context, text string, k int) ([]langid.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := map[string]int{}
	total := 0
	for _, token := range tokenize(text) {
		for _, code := range m.words[token] {
			hits[code]++
			total++
		}
	}
	if total == 0 {
		return nil, nil
	}
	predictions := make([]langid.Prediction, 0, len(hits))
	for _, code := range m.languages {
		if n := hits[code]; n > 0 {
			predictions = append(predictions, langid.Prediction{Label: code, Confidence: float64(n) / float64(total)})
		}
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
	if k > 0 && len(predictions) > k {
		predictions = predictions[:k]
	}
	return predictions, nil
}

func tokenize(text string) []string {
	text = norm.NFC.String(strings.ToLower(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
	})
}

func normalizeWord(word string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(word)))
}
