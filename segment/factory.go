package segment

import (
	"fmt"
	"strings"
)

// Granularity names a segmentation strategy.
type Granularity string

const (
	Sentence  Granularity = "sentence"
	Paragraph Granularity = "paragraph"
	Window    Granularity = "window"
	Lines     Granularity = "lines"
)

// ParseGranularity parses a granularity name; empty selects Sentence.
func ParseGranularity(name string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(name))); g {
	case "":
		return Sentence, nil
	case Sentence, Paragraph, Window, Lines:
		return g, nil
	}
	return "", fmt.Errorf("unsupported granularity: %q", name)
}

// Factory creates splitters for granularities and custom registrations
type Factory struct {
	splitters map[Granularity]Splitter
}

// NewFactory creates a splitter factory; windowSize applies to Window, blockSize to Lines.
func NewFactory(windowSize, blockSize int) *Factory {
	factory := &Factory{splitters: make(map[Granularity]Splitter)}
	factory.Register(Sentence, NewSentenceSplitter())
	factory.Register(Paragraph, NewParagraphSplitter())
	factory.Register(Window, NewWindowSplitter(windowSize))
	factory.Register(Lines, NewLineBlockSplitter(blockSize))
	return factory
}

// Register registers a splitter for a granularity
func (f *Factory) Register(granularity Granularity, splitter Splitter) {
	f.splitters[granularity] = splitter
}

// GetSplitter returns the splitter registered for granularity
func (f *Factory) GetSplitter(granularity Granularity) (Splitter, error) {
	if granularity == "" {
		granularity = Sentence
	}
	splitter, ok := f.splitters[granularity]
	if !ok {
		return nil, fmt.Errorf("no splitter registered for granularity: %q", granularity)
	}
	return splitter, nil
}
