// Package extract turns document bytes into plain text ready for analysis.
package extract

import (
	"bytes"
	"unicode/utf8"
)

// Extractor converts raw document content into UTF-8 text.
type Extractor interface {
	Extract(data []byte) ([]byte, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(data []byte) ([]byte, error)

// Extract calls f.
func (f ExtractorFunc) Extract(data []byte) ([]byte, error) {
	return f(data)
}

// Text passes UTF-8 content through, keeping only printable runes of invalid input.
var Text = ExtractorFunc(func(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, nil
	}
	return extractPrintableText(data), nil
})

func extractPrintableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if isPrintableASCII(b) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func isPrintableASCII(b byte) bool {
	return b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127)
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	return r >= 32 && r != 127 && r <= utf8.MaxRune
}
