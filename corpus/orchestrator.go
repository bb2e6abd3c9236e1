package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/langprobe/cache"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/passage"
)

// Orchestrator runs passage detection over documents with a bounded worker pool.
type Orchestrator struct {
	detector *passage.Detector
	config   Config
	results  *cache.Results
	modelID  string
	logf     func(format string, args ...any)
	progress func(current, total int, id string)
}

// Option configures an Orchestrator.
type Option func(o *Orchestrator)

// WithCache reuses passages of documents analyzed before with the same text, settings and model.
func WithCache(results *cache.Results, modelID string) Option {
	return func(o *Orchestrator) {
		o.results = results
		o.modelID = modelID
	}
}

// WithLogf sets a diagnostic logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *Orchestrator) {
		o.logf = logf
	}
}

// WithProgress sets a callback invoked after each document.
func WithProgress(progress func(current, total int, id string)) Option {
	return func(o *Orchestrator) {
		o.progress = progress
	}
}

// New creates an orchestrator around an injected, already loaded model.
func New(predictor langid.Predictor, config Config, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	adapter, err := langid.NewAdapter(predictor, config.Options)
	if err != nil {
		return nil, err
	}
	detector, err := passage.New(adapter, config.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", langid.ErrConfiguration, err)
	}
	ret := &Orchestrator{detector: detector, config: config}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// Config returns the validated configuration.
func (o *Orchestrator) Config() Config {
	return o.config
}

// Analyze processes documents and returns the finalized report.
// A configuration failure aborts the run; cancellation stops scheduling and returns the context error.
func (o *Orchestrator) Analyze(ctx context.Context, documents []Document) (*Report, error) {
	report := &Report{Started: time.Now(), Entries: make([]*Entry, len(documents))}
	seen := make(map[string]bool, len(documents))
	for i := range documents {
		report.Entries[i] = &Entry{ID: documents[i].ID, Status: StatusAnalyzed, Passages: []passage.Passage{}}
		if err := documents[i].Validate(); err != nil {
			report.Entries[i].fail(err)
			continue
		}
		if seen[documents[i].ID] {
			report.Entries[i].fail(fmt.Errorf("%w: duplicate document id %v", ErrInput, documents[i].ID))
			continue
		}
		seen[documents[i].ID] = true
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	limiter := make(chan struct{}, o.config.Workers)
	var wg sync.WaitGroup
	var fatal error
	var fatalOnce sync.Once
	processed := int32(0)
	total := len(documents)

	for i := range documents {
		entry := report.Entries[i]
		if entry.Status == StatusFailed {
			o.report(atomic.AddInt32(&processed, 1), total, entry)
			continue
		}
		select {
		case <-runCtx.Done():
		case limiter <- struct{}{}:
		}
		if err := runCtx.Err(); err != nil {
			for _, pending := range report.Entries[i:] {
				if pending.Status == StatusAnalyzed {
					pending.fail(err)
				}
			}
			break
		}
		wg.Add(1)
		go func(document *Document, entry *Entry) {
			defer wg.Done()
			defer func() { <-limiter }()
			if err := o.analyze(runCtx, document, entry); err != nil {
				fatalOnce.Do(func() {
					fatal = err
					cancel()
				})
				return
			}
			o.report(atomic.AddInt32(&processed, 1), total, entry)
		}(&documents[i], entry)
	}
	wg.Wait()
	report.Finished = time.Now()

	if fatal != nil {
		return nil, fatal
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// analyze fills entry; only errors that abort the run are returned.
func (o *Orchestrator) analyze(ctx context.Context, document *Document, entry *Entry) error {
	var key uint64
	if o.results != nil {
		var err error
		if key, err = cache.Key(o.modelID+"/"+o.config.Fingerprint(), document.Text); err == nil {
			if passages, ok := o.results.Get(key); ok {
				entry.Passages = passages
				entry.Cached = true
				return nil
			}
		}
	}
	passages, err := o.detector.Detect(ctx, document.Text)
	if err != nil {
		if errors.Is(err, langid.ErrConfiguration) {
			return fmt.Errorf("document %v: %w", document.ID, err)
		}
		entry.fail(err)
		return nil
	}
	entry.Passages = passages
	if o.results != nil && key != 0 {
		if degraded(passages) {
			o.results.Delete(key)
		} else {
			o.results.Set(key, passages)
		}
	}
	return nil
}

// degraded reports whether any span fell back to an empty language list after a model failure.
func degraded(passages []passage.Passage) bool {
	for i := range passages {
		if passages[i].ModelFailures > 0 {
			return true
		}
	}
	return false
}

func (o *Orchestrator) report(current int32, total int, entry *Entry) {
	if o.logf != nil && entry.Status == StatusFailed {
		o.logf("document %v failed: %v", entry.ID, entry.Error)
	}
	if o.progress != nil {
		o.progress(int(current), total, entry.ID)
	}
}

// AnalyzeCorpus runs passage detection over documents with predictor.
func AnalyzeCorpus(ctx context.Context, predictor langid.Predictor, documents []Document, config Config) (*Report, error) {
	orchestrator, err := New(predictor, config)
	if err != nil {
		return nil, err
	}
	return orchestrator.Analyze(ctx, documents)
}
