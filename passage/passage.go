package passage

import (
	"unicode/utf8"

	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/script"
	"github.com/viant/langprobe/segment"
)

// Passage is a merged run of adjacent spans sharing dominant signals.
type Passage struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Spans int    `json:"spans"`
	// Script is the dominant category of Profile, empty when nothing is classifiable.
	Script string `json:"script,omitempty"`
	// Language is the top code of Languages, empty when there is none.
	Language  string         `json:"language,omitempty"`
	Profile   script.Profile `json:"profile"`
	Languages langid.List    `json:"languages"`
	// LowConfidence marks passages built from spans whose signal strength is below threshold.
	LowConfidence bool `json:"lowConfidence"`
	// BoundaryDisagreement marks passages where a span lacking one signal was merged on the other.
	BoundaryDisagreement bool `json:"boundaryDisagreement"`
	// ModelFailures counts spans whose model call failed and was degraded to an empty list.
	ModelFailures int `json:"modelFailures,omitempty"`
}

// Analysis holds the per span results.
type Analysis struct {
	segment.Span
	Profile script.Profile
	// Classified is the number of classifiable code points.
	Classified int
	// Length is the span length in runes.
	Length    int
	Languages langid.List
	Degraded  bool
}

// Signal is the dominant script and language of a span with their strengths in [0,1].
type Signal struct {
	Script           string
	ScriptStrength   float64
	Language         string
	LanguageStrength float64
}

// Signal returns the dominant signal of the analysis.
func (a *Analysis) Signal() Signal {
	var signal Signal
	if category, pct := a.Profile.Dominant(); category != script.Unclassifiable {
		signal.Script = category.String()
		signal.ScriptStrength = pct / 100
	}
	if top, ok := a.Languages.Top(); ok {
		signal.Language = top.Code
		signal.LanguageStrength = top.Confidence
	}
	return signal
}

// Empty reports whether neither signal is present.
func (s Signal) Empty() bool {
	return s.Script == "" && s.Language == ""
}

// Partial reports whether exactly one signal is present.
func (s Signal) Partial() bool {
	return (s.Script == "") != (s.Language == "")
}

// Weak reports whether a present signal falls below its threshold.
func (s Signal) Weak(scriptThreshold, languageThreshold float64) bool {
	if s.Script != "" && s.ScriptStrength < scriptThreshold {
		return true
	}
	return s.Language != "" && s.LanguageStrength < languageThreshold
}

func newAnalysis(span segment.Span) *Analysis {
	profile, counts := script.Analyze(span.Text)
	return &Analysis{
		Span:       span,
		Profile:    profile,
		Classified: counts.Total(),
		Length:     utf8.RuneCountInString(span.Text),
		Languages:  langid.List{},
	}
}
