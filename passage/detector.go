package passage

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/script"
	"github.com/viant/langprobe/segment"
)

// Config controls segmentation and merge thresholds.
type Config struct {
	Granularity segment.Granularity `yaml:"granularity" json:"granularity"`
	// WindowSize is the window length in runes for segment.Window.
	WindowSize int `yaml:"windowSize" json:"windowSize"`
	// BlockSize is the number of non-empty lines per span for segment.Lines.
	BlockSize int `yaml:"blockSize" json:"blockSize"`
	// ScriptThreshold is the minimum dominant script proportion in [0,1].
	ScriptThreshold float64 `yaml:"scriptThreshold" json:"scriptThreshold"`
	// LanguageThreshold is the minimum top language confidence in [0,1].
	LanguageThreshold float64 `yaml:"languageThreshold" json:"languageThreshold"`
	// MinLength skips the model for spans shorter than MinLength runes after trimming.
	MinLength int `yaml:"minLength" json:"minLength"`
}

// Validate checks thresholds and granularity.
func (c *Config) Validate() error {
	granularity, err := segment.ParseGranularity(string(c.Granularity))
	if err != nil {
		return err
	}
	c.Granularity = granularity
	if c.ScriptThreshold < 0 || c.ScriptThreshold > 1 {
		return fmt.Errorf("script threshold %v outside [0,1]", c.ScriptThreshold)
	}
	if c.LanguageThreshold < 0 || c.LanguageThreshold > 1 {
		return fmt.Errorf("language threshold %v outside [0,1]", c.LanguageThreshold)
	}
	return nil
}

// Detector segments a document, classifies each span and merges spans into passages.
// A Detector holds no per document state and can be shared between goroutines.
type Detector struct {
	adapter  *langid.Adapter
	splitter segment.Splitter
	config   Config
}

// New creates a detector over a loaded language adapter.
func New(adapter *langid.Adapter, config Config) (*Detector, error) {
	if adapter == nil {
		return nil, fmt.Errorf("%w: language adapter is required", langid.ErrConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	splitter, err := segment.NewFactory(config.WindowSize, config.BlockSize).GetSplitter(config.Granularity)
	if err != nil {
		return nil, err
	}
	return &Detector{adapter: adapter, splitter: splitter, config: config}, nil
}

// WithSplitter replaces the segmentation strategy.
func (d *Detector) WithSplitter(splitter segment.Splitter) *Detector {
	clone := *d
	clone.splitter = splitter
	return &clone
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Analyze segments text and classifies every span.
// Model failures are degraded or returned according to the adapter policy.
func (d *Detector) Analyze(ctx context.Context, text string) ([]*Analysis, error) {
	spans := d.splitter.Split(text)
	result := make([]*Analysis, 0, len(spans))
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis := newAnalysis(span)
		if d.config.MinLength <= 0 || utf8.RuneCountInString(strings.TrimSpace(span.Text)) >= d.config.MinLength {
			languages, err := d.adapter.Predict(ctx, span.Text)
			switch {
			case err == nil:
				analysis.Languages = languages
			case d.adapter.Degrades(err):
				analysis.Degraded = true
			default:
				return nil, fmt.Errorf("span %d-%d: %w", span.Start, span.End, err)
			}
		}
		result = append(result, analysis)
	}
	return result, nil
}

// Detect returns the passages of text. An empty text has no passages.
func (d *Detector) Detect(ctx context.Context, text string) ([]Passage, error) {
	analyses, err := d.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return d.Merge(analyses), nil
}

// Merge folds analyzed spans into passages in a single pass.
func (d *Detector) Merge(analyses []*Analysis) []Passage {
	passages := make([]Passage, 0)
	var current *run
	for _, analysis := range analyses {
		signal := analysis.Signal()
		weak := signal.Weak(d.config.ScriptThreshold, d.config.LanguageThreshold)
		if current != nil && current.accepts(signal, weak) {
			current.extend(analysis, signal, weak)
			continue
		}
		if current != nil {
			passages = append(passages, current.close(d.adapter.Options()))
		}
		current = newRun(analysis, signal, weak)
	}
	if current != nil {
		passages = append(passages, current.close(d.adapter.Options()))
	}
	return passages
}

// run is a passage under construction.
type run struct {
	script       string
	language     string
	weak         bool
	disagreement bool
	analyses     []*Analysis
}

func newRun(analysis *Analysis, signal Signal, weak bool) *run {
	return &run{script: signal.Script, language: signal.Language, weak: weak, analyses: []*Analysis{analysis}}
}

func (r *run) empty() bool {
	return r.script == "" && r.language == ""
}

func (r *run) accepts(signal Signal, weak bool) bool {
	if signal.Empty() || r.empty() {
		return true
	}
	if weak != r.weak {
		return false
	}
	return compatible(r.script, signal.Script) && compatible(r.language, signal.Language)
}

func (r *run) extend(analysis *Analysis, signal Signal, weak bool) {
	if !signal.Empty() && !r.empty() && (signal.Partial() || r.script == "" || r.language == "") {
		if signal.Script != r.script || signal.Language != r.language {
			r.disagreement = true
		}
	}
	if r.empty() && !signal.Empty() {
		r.weak = weak
	}
	if r.script == "" {
		r.script = signal.Script
	}
	if r.language == "" {
		r.language = signal.Language
	}
	r.analyses = append(r.analyses, analysis)
}

func (r *run) close(options langid.Options) Passage {
	first, last := r.analyses[0], r.analyses[len(r.analyses)-1]
	profiles := make([]script.Profile, len(r.analyses))
	profileWeights := make([]int, len(r.analyses))
	lists := make([]langid.List, len(r.analyses))
	listWeights := make([]int, len(r.analyses))
	text := strings.Builder{}
	failures := 0
	for i, analysis := range r.analyses {
		profiles[i], profileWeights[i] = analysis.Profile, analysis.Classified
		lists[i] = analysis.Languages
		if len(analysis.Languages) > 0 {
			listWeights[i] = analysis.Length
		}
		if analysis.Degraded {
			failures++
		}
		text.WriteString(analysis.Text)
	}
	passage := Passage{
		Start:                first.Start,
		End:                  last.End,
		Text:                 text.String(),
		Spans:                len(r.analyses),
		Profile:              script.Weighted(profiles, profileWeights),
		Languages:            langid.Weighted(lists, listWeights, options.MinConfidence, options.TopK),
		LowConfidence:        r.weak,
		BoundaryDisagreement: r.disagreement,
		ModelFailures:        failures,
	}
	if category, _ := passage.Profile.Dominant(); category != script.Unclassifiable {
		passage.Script = category.String()
	}
	if top, ok := passage.Languages.Top(); ok {
		passage.Language = top.Code
	}
	return passage
}

// compatible treats an absent signal as unknown rather than as a change.
func compatible(current, next string) bool {
	return current == "" || next == "" || current == next
}
