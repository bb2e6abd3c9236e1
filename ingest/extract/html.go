package extract

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// HTML sanitizes markup and converts it to markdown so paragraphs survive as blank line separated blocks.
type HTML struct {
	policy    *bluemonday.Policy
	strict    *bluemonday.Policy
	converter *converter.Converter
}

// NewHTML creates an HTML extractor
func NewHTML() *HTML {
	return &HTML{
		policy: bluemonday.UGCPolicy(),
		strict: bluemonday.StrictPolicy(),
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extract returns markdown text, or the tag-stripped text when conversion yields nothing.
func (h *HTML) Extract(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	sanitized := h.policy.SanitizeBytes(data)
	result, err := h.converter.ConvertString(string(sanitized))
	if err != nil || strings.TrimSpace(result) == "" {
		return []byte(strings.TrimSpace(h.strict.Sanitize(string(data)))), nil
	}
	return []byte(strings.TrimSpace(result)), nil
}
