package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/filter"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/segment"
)

var keywordPredictor = langid.PredictorFunc(func(ctx context.Context, text string, k int) ([]langid.Prediction, error) {
	switch {
	case strings.Contains(text, "chat"):
		return []langid.Prediction{{Label: "__label__fr", Confidence: 0.9}}, nil
	case strings.Contains(text, "Hund"):
		return []langid.Prediction{{Label: "__label__de", Confidence: 0.8}}, nil
	}
	return nil, nil
})

func newTestService(t *testing.T, cfg *Config, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithConfig(cfg), WithPredictor(keywordPredictor, "keywords")}, opts...)
	svc, err := NewService(opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_TextOperations(t *testing.T) {
	svc := newTestService(t, &Config{})
	profile := svc.ClassifyText("abc где")
	if profile["latin"] != 50 || profile["cyrillic"] != 50 {
		t.Errorf("expected half latin half cyrillic, got %v", profile)
	}
	languages, err := svc.DetectLanguage(context.Background(), "Le chat dort.", 1, nil)
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if top, ok := languages.Top(); !ok || top.Code != "fr" {
		t.Errorf("expected fr, got %v", languages)
	}
	if report := svc.DetectCode("if x: return y;", 0); !report.IsCodeLike {
		t.Errorf("expected code like report, got %+v", report)
	}
	if report := svc.DetectMath("x^2 + y^2 = 5", 0); !report.IsMath {
		t.Errorf("expected math report, got %+v", report)
	}
	removed, err := svc.RemoveScripts("Hello Привет", filter.Options{Scripts: []string{"cyrillic"}})
	if err != nil || removed != "Hello " {
		t.Errorf("expected %q, got %q (%v)", "Hello ", removed, err)
	}
	extracted, err := svc.ExtractScripts("Hello Привет", filter.Options{Scripts: []string{"cyrillic"}})
	if err != nil || extracted != "Привет" {
		t.Errorf("expected %q, got %q (%v)", "Привет", extracted, err)
	}
}

func TestService_AnalyzeText(t *testing.T) {
	svc := newTestService(t, &Config{Analysis: corpus.Config{}})
	passages, err := svc.AnalyzeText(context.Background(), "Le chat dort. Der Hund bellt.", nil)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if len(passages) != 2 || passages[0].Language != "fr" || passages[1].Language != "de" {
		t.Fatalf("expected fr then de passages, got %+v", passages)
	}
	override := &corpus.Config{}
	override.Granularity = segment.Paragraph
	passages, err = svc.AnalyzeText(context.Background(), "Le chat dort. Der Hund bellt.", override)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected one paragraph passage, got %+v", passages)
	}
}

func TestService_DetectLanguage_MinConfidence(t *testing.T) {
	cfg := &Config{}
	cfg.Analysis.MinConfidence = 0.95
	svc := newTestService(t, cfg)
	zero, half := 0.0, 0.5
	tests := []struct {
		name          string
		minConfidence *float64
		expected      int
	}{
		{name: "configured", minConfidence: nil, expected: 0},
		{name: "explicit zero", minConfidence: &zero, expected: 1},
		{name: "explicit value", minConfidence: &half, expected: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			languages, err := svc.DetectLanguage(context.Background(), "Le chat dort.", 0, tc.minConfidence)
			if err != nil {
				t.Fatalf("DetectLanguage: %v", err)
			}
			if len(languages) != tc.expected {
				t.Errorf("expected %d languages, got %v", tc.expected, languages)
			}
		})
	}
}

func TestService_BuiltinModel(t *testing.T) {
	t.Setenv(ModelPathEnv, "")
	t.Setenv(LegacyModelPathEnv, "")
	t.Setenv(ModelURLEnv, "")
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	languages, err := svc.DetectLanguage(context.Background(), "Le chat est sur la table.", 2, nil)
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if top, _ := languages.Top(); top.Code != "fr" {
		t.Fatalf("expected fr, got %v", languages)
	}
}

func TestOpenModel_Errors(t *testing.T) {
	ctx := context.Background()
	if _, _, err := OpenModel(ctx, nil, ModelConfig{Kind: "bert"}); !errors.Is(err, langid.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if _, _, err := OpenModel(ctx, nil, ModelConfig{Kind: ModelFastText}); !errors.Is(err, langid.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if _, _, err := OpenModel(ctx, afs.New(), ModelConfig{Path: "mem://localhost/models/missing.yaml"}); !errors.Is(err, langid.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestService_AnalyzeCorpus(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/service-corpus"
	for name, content := range map[string]string{
		"fr/chat.txt":    "Le chat dort.",
		"de/hund.txt":    "Der Hund bellt.",
		"notes/todo.log": "Le chat mange.",
	} {
		if err := fs.Upload(ctx, base+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	cfg := &Config{
		Store:   StoreConfig{DSN: filepath.Join(t.TempDir(), "runs.db")},
		Cache:   CacheConfig{URL: "mem://localhost/service-cache/results.bin"},
		Corpora: map[string]CorpusConfig{"mixed": {Path: base, Exclude: []string{"*.log"}}},
	}
	svc := newTestService(t, cfg, WithFS(fs))
	spec, err := cfg.ResolveCorpus(ResolveCorpusRequest{Name: "mixed"})
	if err != nil {
		t.Fatalf("ResolveCorpus: %v", err)
	}
	result, err := svc.AnalyzeCorpus(ctx, AnalyzeCorpusRequest{Corpus: spec, Persist: true})
	if err != nil {
		t.Fatalf("AnalyzeCorpus: %v", err)
	}
	if result.Stats.Extracted != 2 || result.Stats.Skipped != 1 {
		t.Errorf("unexpected stats %+v", result.Stats)
	}
	if ids := result.Report.IDs(); len(ids) != 2 || ids[0] != "de/hund.txt" || ids[1] != "fr/chat.txt" {
		t.Errorf("expected two analyzed documents, got %v", ids)
	}
	if result.Proportions.Documents["fr/chat.txt"]["fr"] != 100 {
		t.Errorf("expected fr document, got %v", result.Proportions.Documents)
	}
	if result.Run == nil {
		t.Fatalf("expected persisted run")
	}

	runs, err := svc.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != result.Run.ID || runs[0].Documents != 2 {
		t.Fatalf("expected the saved run, got %+v", runs)
	}
	_, report, err := svc.LoadRun(ctx, result.Run.ID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if entry, ok := report.Entry("de/hund.txt"); !ok || len(entry.Passages) != 1 || entry.Passages[0].Language != "de" {
		t.Fatalf("expected restored de passage, got %+v", entry)
	}

	cached := newTestService(t, &Config{Cache: cfg.Cache}, WithFS(fs))
	again, err := cached.AnalyzeCorpus(ctx, AnalyzeCorpusRequest{Corpus: spec})
	if err != nil {
		t.Fatalf("AnalyzeCorpus: %v", err)
	}
	for _, entry := range again.Report.Entries {
		if !entry.Cached {
			t.Errorf("expected %v served from the cache snapshot", entry.ID)
		}
	}
}

func TestService_RunsWithoutStore(t *testing.T) {
	svc := newTestService(t, &Config{})
	if _, err := svc.Runs(context.Background(), 0); err == nil {
		t.Fatalf("expected error without store")
	}
}
