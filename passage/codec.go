package passage

import (
	"github.com/viant/bintly"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/script"
)

const (
	flagLowConfidence = 1 << iota
	flagBoundaryDisagreement
)

// EncodeBinary encodes the passage to a binary stream
func (p *Passage) EncodeBinary(stream *bintly.Writer) error {
	stream.Int(p.Start)
	stream.Int(p.End)
	stream.String(p.Text)
	stream.Int(p.Spans)
	stream.String(p.Script)
	stream.String(p.Language)

	categories := p.Profile.Categories()
	stream.Int16(int16(len(categories)))
	for _, category := range categories {
		stream.Int16(int16(category))
		stream.Float64(p.Profile[category])
	}

	stream.Int16(int16(len(p.Languages)))
	for _, entry := range p.Languages {
		stream.String(entry.Code)
		stream.Float64(entry.Confidence)
	}

	var flags int16
	if p.LowConfidence {
		flags |= flagLowConfidence
	}
	if p.BoundaryDisagreement {
		flags |= flagBoundaryDisagreement
	}
	stream.Int16(flags)
	stream.Int(p.ModelFailures)
	return nil
}

// DecodeBinary decodes the passage from a binary stream
func (p *Passage) DecodeBinary(stream *bintly.Reader) error {
	stream.Int(&p.Start)
	stream.Int(&p.End)
	stream.String(&p.Text)
	stream.Int(&p.Spans)
	stream.String(&p.Script)
	stream.String(&p.Language)

	var size int16
	stream.Int16(&size)
	p.Profile = make(script.Profile, size)
	for i := 0; i < int(size); i++ {
		var category int16
		var pct float64
		stream.Int16(&category)
		stream.Float64(&pct)
		p.Profile[script.Category(category)] = pct
	}

	stream.Int16(&size)
	p.Languages = make(langid.List, size)
	for i := range p.Languages {
		stream.String(&p.Languages[i].Code)
		stream.Float64(&p.Languages[i].Confidence)
	}

	var flags int16
	stream.Int16(&flags)
	p.LowConfidence = flags&flagLowConfidence != 0
	p.BoundaryDisagreement = flags&flagBoundaryDisagreement != 0
	stream.Int(&p.ModelFailures)
	return nil
}
