package notation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ASCII operators outside the Unicode math symbol category.
const mathOperators = "^*/%-"

// MathReport describes mathematical notation density of a text.
type MathReport struct {
	Symbols    int     `json:"mathSymbols"`
	Characters int     `json:"totalCharacters"`
	Ratio      float64 `json:"mathRatio"`
	IsMath     bool    `json:"isMathematical"`
}

// IsMathSymbol reports whether r is a mathematical symbol or operator.
func IsMathSymbol(r rune) bool {
	return unicode.Is(unicode.Sm, r) || strings.ContainsRune(mathOperators, r)
}

// DetectMath measures math symbols as a percentage of non-space characters.
func DetectMath(text string, threshold float64) MathReport {
	text = norm.NFC.String(text)
	report := MathReport{Characters: nonSpaceCount(text)}
	if report.Characters == 0 {
		return report
	}
	for _, r := range text {
		if IsMathSymbol(r) {
			report.Symbols++
		}
	}
	report.Ratio = percent(report.Symbols, report.Characters)
	report.IsMath = report.Ratio >= threshold
	return report
}
