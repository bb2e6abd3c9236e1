package notation

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const codeSymbols = "{}()[];,.:=<>/*+-_|#@`$%^&~"

var (
	codeKeywordPattern = regexp.MustCompile(`(?i)\b(` +
		`def|class|return|import|from|as|with|lambda|yield|async|await|try|except|finally|` +
		`if|elif|else|for|while|break|continue|pass|raise|` +
		`function|const|let|var|new|this|switch|case|default|` +
		`library|require|pkg|data|model|plot|ggplot|` +
		`select|where|insert|update|delete` +
		`)\b`)
	codeBlockPattern  = regexp.MustCompile("(?s)```.*?```")
	codeInlinePattern = regexp.MustCompile("`[^`]+`")
)

// DefaultThreshold is the default symbol ratio percentage.
const DefaultThreshold = 1.0

// CodeReport describes code-like density of a text.
type CodeReport struct {
	Symbols    int     `json:"codeSymbols"`
	Keywords   int     `json:"keywordMatches"`
	Characters int     `json:"totalCharacters"`
	Ratio      float64 `json:"codeRatio"`
	IsCodeLike bool    `json:"isCodeLike"`
}

// IsCodeSymbol reports whether r is a symbol typical of source code.
func IsCodeSymbol(r rune) bool {
	return strings.ContainsRune(codeSymbols, r)
}

// DetectCode measures code symbols as a percentage of non-space characters and counts code keywords.
// Text is code-like when the ratio reaches threshold or any keyword matches.
func DetectCode(text string, threshold float64) CodeReport {
	text = norm.NFC.String(text)
	report := CodeReport{Characters: nonSpaceCount(text)}
	if report.Characters == 0 {
		return report
	}
	for _, r := range text {
		if IsCodeSymbol(r) {
			report.Symbols++
		}
	}
	report.Keywords = len(codeKeywordPattern.FindAllStringIndex(text, -1))
	report.Ratio = percent(report.Symbols, report.Characters)
	report.IsCodeLike = report.Ratio >= threshold || report.Keywords > 0
	return report
}

// CodeSpans returns byte ranges of fenced blocks, inline code and code keywords.
func CodeSpans(text string) [][2]int {
	var spans [][2]int
	for _, pattern := range []*regexp.Regexp{codeBlockPattern, codeInlinePattern, codeKeywordPattern} {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	return spans
}

func nonSpaceCount(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// percent returns part/total as a percentage rounded to two decimals.
func percent(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*10000) / 100
}
