package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/langprobe/cache"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/filter"
	"github.com/viant/langprobe/ingest"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/notation"
	"github.com/viant/langprobe/passage"
	"github.com/viant/langprobe/script"
	"github.com/viant/langprobe/store"
)

// Option configures the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithPredictor sets the language model; modelID keys cached results.
func WithPredictor(predictor langid.Predictor, modelID string) Option {
	return func(s *Service) {
		s.predictor = predictor
		s.modelID = modelID
	}
}

// WithStore sets an opened run store.
func WithStore(st *store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithFS sets the storage service used for models, corpora and cache snapshots.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithResults sets the result cache.
func WithResults(results *cache.Results) Option {
	return func(s *Service) { s.results = results }
}

// Service exposes reusable classification, detection and corpus operations.
type Service struct {
	config    *Config
	fs        afs.Service
	predictor langid.Predictor
	modelID   string
	store     *store.Store
	ownsStore bool
	results   *cache.Results
	mu        sync.Mutex
}

// NewService creates a new Service.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = &Config{}
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	s.config.Model.ApplyEnv()
	if err := s.config.Analysis.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Close releases an owned store connection (if any).
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil && s.ownsStore {
		return s.store.Close()
	}
	return nil
}

// Predictor returns the language model, loading the configured one on first use.
func (s *Service) Predictor(ctx context.Context) (langid.Predictor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.predictor != nil {
		return s.predictor, nil
	}
	predictor, modelID, err := OpenModel(ctx, s.fs, s.config.Model)
	if err != nil {
		return nil, err
	}
	s.predictor, s.modelID = predictor, modelID
	return predictor, nil
}

// Store returns the run store, opening the configured one on first use.
// It returns nil without error when no store is configured.
func (s *Service) Store(ctx context.Context) (*store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil || s.config.Store.DSN == "" {
		return s.store, nil
	}
	st, err := store.Open(ctx, s.config.Store.Driver, s.config.Store.DSN)
	if err != nil {
		return nil, err
	}
	s.store, s.ownsStore = st, true
	return st, nil
}

// ClassifyText returns script category percentages of text.
func (s *Service) ClassifyText(text string) map[string]float64 {
	return script.ClassifyTextWithProportions(text)
}

// DetectLanguage returns the language list of text. A non-positive topK or a nil
// minConfidence uses the configured value.
func (s *Service) DetectLanguage(ctx context.Context, text string, topK int, minConfidence *float64) (langid.List, error) {
	predictor, err := s.Predictor(ctx)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.config.Analysis.TopK
	}
	threshold := s.config.Analysis.MinConfidence
	if minConfidence != nil {
		threshold = *minConfidence
	}
	return langid.DetectLanguage(ctx, predictor, text, topK, threshold)
}

// DetectCode reports code-like content; non-positive threshold uses the default.
func (s *Service) DetectCode(text string, threshold float64) notation.CodeReport {
	if threshold <= 0 {
		threshold = notation.DefaultThreshold
	}
	return notation.DetectCode(text, threshold)
}

// DetectMath reports mathematical notation; non-positive threshold uses the default.
func (s *Service) DetectMath(text string, threshold float64) notation.MathReport {
	if threshold <= 0 {
		threshold = notation.DefaultThreshold
	}
	return notation.DetectMath(text, threshold)
}

// RemoveScripts deletes the selected characters from text.
func (s *Service) RemoveScripts(text string, options filter.Options) (string, error) {
	return filter.Remove(text, options)
}

// ExtractScripts keeps only the selected characters of text.
func (s *Service) ExtractScripts(text string, options filter.Options) (string, error) {
	return filter.Extract(text, options)
}

// AnalyzeText returns the passages of a single text.
func (s *Service) AnalyzeText(ctx context.Context, text string, config *corpus.Config) ([]passage.Passage, error) {
	cfg, err := s.analysisConfig(config)
	if err != nil {
		return nil, err
	}
	predictor, err := s.Predictor(ctx)
	if err != nil {
		return nil, err
	}
	adapter, err := langid.NewAdapter(predictor, cfg.Options)
	if err != nil {
		return nil, err
	}
	detector, err := passage.New(adapter, cfg.Config)
	if err != nil {
		return nil, err
	}
	return detector.Detect(ctx, text)
}

// AnalyzeCorpus loads a corpus (unless documents are given), analyzes it and optionally persists the run.
func (s *Service) AnalyzeCorpus(ctx context.Context, req AnalyzeCorpusRequest) (*AnalyzeCorpusResult, error) {
	cfg, err := s.analysisConfig(req.Config)
	if err != nil {
		return nil, err
	}
	predictor, err := s.Predictor(ctx)
	if err != nil {
		return nil, err
	}
	result := &AnalyzeCorpusResult{}
	documents := req.Documents
	if documents == nil {
		if req.Corpus.Path == "" {
			return nil, fmt.Errorf("corpus path is required")
		}
		loader := ingest.New(ingest.WithFS(ingest.NewAFS(s.fs)), ingest.WithMatcher(newMatcher(req.Corpus)), ingest.WithLogf(req.Logf))
		if documents, result.Stats, err = loader.Load(ctx, req.Corpus.Path); err != nil {
			return nil, err
		}
		logf(req.Logf, "corpus %v: %d files, %d extracted, %d skipped, %d failed",
			req.Corpus.Path, result.Stats.Total, result.Stats.Extracted, result.Stats.Skipped, result.Stats.Failed)
	}
	opts := []corpus.Option{corpus.WithLogf(req.Logf), corpus.WithProgress(req.Progress)}
	results, err := s.loadResults(ctx)
	if err != nil {
		return nil, err
	}
	if results != nil {
		opts = append(opts, corpus.WithCache(results, s.modelID))
	}
	orchestrator, err := corpus.New(predictor, cfg, opts...)
	if err != nil {
		return nil, err
	}
	report, err := orchestrator.Analyze(ctx, documents)
	if report == nil {
		return nil, err
	}
	result.Report = report
	result.Proportions = corpus.LanguageProportions(report)
	if err != nil {
		return result, err
	}
	if err = s.saveResults(ctx, results); err != nil {
		return result, err
	}
	if req.Persist {
		st, err := s.Store(ctx)
		if err != nil {
			return result, err
		}
		if st != nil {
			if result.Run, err = st.Save(ctx, report, cfg.Fingerprint()); err != nil {
				return result, err
			}
			logf(req.Logf, "saved run %v", result.Run.ID)
		}
	}
	return result, nil
}

// Runs lists persisted runs, most recent first.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	st, err := s.requireStore(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListRuns(ctx, limit)
}

// LoadRun restores a persisted run report.
func (s *Service) LoadRun(ctx context.Context, id string) (*store.Run, *corpus.Report, error) {
	st, err := s.requireStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return st.LoadRun(ctx, id)
}

func (s *Service) requireStore(ctx context.Context) (*store.Store, error) {
	st, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("store dsn is not configured")
	}
	return st, nil
}

func (s *Service) analysisConfig(override *corpus.Config) (corpus.Config, error) {
	cfg := s.config.Analysis
	if override != nil {
		cfg = *override
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s *Service) loadResults(ctx context.Context) (*cache.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results != nil || s.config.Cache.URL == "" {
		return s.results, nil
	}
	results := cache.NewResults()
	if err := results.Load(ctx, s.fs, s.config.Cache.URL); err != nil {
		return nil, fmt.Errorf("failed to load result cache: %w", err)
	}
	s.results = results
	return results, nil
}

func (s *Service) saveResults(ctx context.Context, results *cache.Results) error {
	if results == nil || s.config.Cache.URL == "" {
		return nil
	}
	if err := results.Save(ctx, s.fs, s.config.Cache.URL); err != nil {
		return fmt.Errorf("failed to save result cache: %w", err)
	}
	return nil
}

func logf(fn func(format string, args ...any), format string, args ...any) {
	if fn != nil {
		fn(format, args...)
	}
}
