package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text layer, falling back to printable runes when the document cannot be parsed.
var PDF = ExtractorFunc(func(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		if reader, err := r.GetPlainText(); err == nil {
			if out, err := io.ReadAll(reader); err == nil && len(out) > 0 {
				return out, nil
			}
		}
	}
	return extractPrintableText(data), nil
})
