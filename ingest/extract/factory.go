package extract

import (
	"path/filepath"
	"strings"
)

// Factory selects an extractor by file extension.
type Factory struct {
	defaultExtractor   Extractor
	extensionExtractor map[string]Extractor
}

// GetExtractor returns an appropriate extractor for the given file
func (f *Factory) GetExtractor(filePath string) Extractor {
	ext := strings.ToLower(filepath.Ext(filePath))
	if extractor, ok := f.extensionExtractor[ext]; ok {
		return extractor
	}
	return f.defaultExtractor
}

// Extract converts data with the extractor registered for filePath.
func (f *Factory) Extract(filePath string, data []byte) ([]byte, error) {
	return f.GetExtractor(filePath).Extract(data)
}

// NewFactory creates an extractor factory
func NewFactory() *Factory {
	factory := &Factory{
		defaultExtractor:   Text,
		extensionExtractor: make(map[string]Extractor),
	}
	html := NewHTML()
	factory.RegisterExtensionExtractor(".html", html)
	factory.RegisterExtensionExtractor(".htm", html)
	factory.RegisterExtensionExtractor(".pdf", PDF)
	factory.RegisterExtensionExtractor(".docx", DOCX)
	factory.RegisterExtensionExtractor(".xlsx", XLSX)
	factory.RegisterExtensionExtractor(".xlsm", XLSX)
	factory.RegisterExtensionExtractor(".xls", XLS)
	return factory
}

// RegisterExtensionExtractor registers a custom extractor for a file extension
func (f *Factory) RegisterExtensionExtractor(ext string, extractor Extractor) {
	f.extensionExtractor[strings.ToLower(ext)] = extractor
}

// Extensions returns the registered extensions.
func (f *Factory) Extensions() []string {
	result := make([]string, 0, len(f.extensionExtractor))
	for ext := range f.extensionExtractor {
		result = append(result, ext)
	}
	return result
}
