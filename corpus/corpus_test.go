package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/viant/langprobe/cache"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/segment"
)

// keywordPredictor returns the language of the first keyword found in the text.
type keywordPredictor struct {
	calls    int32
	active   int32
	peak     int32
	delay    time.Duration
	failWord string
	mux      sync.Mutex
}

var keywords = []struct {
	word       string
	code       string
	confidence float64
}{
	{word: "chat", code: "fr", confidence: 0.9},
	{word: "Hund", code: "de", confidence: 0.8},
	{word: "cat", code: "en", confidence: 0.6},
}

func (k *keywordPredictor) Predict(ctx context.Context, text string, _ int) ([]langid.Prediction, error) {
	atomic.AddInt32(&k.calls, 1)
	active := atomic.AddInt32(&k.active, 1)
	defer atomic.AddInt32(&k.active, -1)
	k.mux.Lock()
	if active > k.peak {
		k.peak = active
	}
	k.mux.Unlock()
	if k.delay > 0 {
		time.Sleep(k.delay)
	}
	if k.failWord != "" && strings.Contains(text, k.failWord) {
		return nil, errors.New("model crashed")
	}
	for _, keyword := range keywords {
		if strings.Contains(text, keyword.word) {
			return []langid.Prediction{{Label: "__label__" + keyword.code, Confidence: keyword.confidence}, {Label: "__label__it", Confidence: 0.05}}, nil
		}
	}
	return nil, nil
}

func TestAnalyzeCorpus(t *testing.T) {
	documents := []Document{
		{ID: "fr.txt", Text: "Le chat dort. Le chat mange."},
		{ID: "de.txt", Text: "Der Hund bellt."},
		{ID: "digits.txt", Text: "12345 !!!"},
		{ID: "broken.txt", Text: "caf\xe9"},
		{ID: "", Text: "Le chat"},
		{ID: "scan.pdf", Err: errors.New("no text layer")},
	}
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{}, documents, Config{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Entries) != len(documents) {
		t.Fatalf("expected %d entries, got %d", len(documents), len(report.Entries))
	}
	passages := report.Passages()
	if len(passages["fr.txt"]) != 1 || passages["fr.txt"][0].Language != "fr" {
		t.Errorf("expected a single fr passage, got %+v", passages["fr.txt"])
	}
	if len(passages["de.txt"]) != 1 || passages["de.txt"][0].Language != "de" {
		t.Errorf("expected a single de passage, got %+v", passages["de.txt"])
	}
	digits, ok := report.Entry("digits.txt")
	if !ok || digits.Status != StatusAnalyzed {
		t.Errorf("expected analyzed document without confident matches, got %+v", digits)
	}
	failed := report.Failed()
	if len(failed) != 3 {
		t.Fatalf("expected 3 failed entries, got %d", len(failed))
	}
	for _, entry := range failed {
		if !errors.Is(entry.Err(), ErrInput) {
			t.Errorf("expected input error for %q, got %v", entry.ID, entry.Err())
		}
	}
	if ids := report.IDs(); len(ids) != 3 || ids[0] != "de.txt" {
		t.Errorf("expected sorted analyzed ids, got %v", ids)
	}
}

func TestAnalyzeCorpus_Empty(t *testing.T) {
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{}, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Entries) != 0 || len(report.Passages()) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestAnalyzeCorpus_DuplicateID(t *testing.T) {
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{}, []Document{
		{ID: "a", Text: "Le chat"},
		{ID: "a", Text: "Der Hund"},
	}, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Entries[0].Status != StatusAnalyzed || report.Entries[1].Status != StatusFailed {
		t.Fatalf("expected the duplicate to fail, got %v %v", report.Entries[0].Status, report.Entries[1].Status)
	}
}

func TestAnalyzeCorpus_FailurePolicy(t *testing.T) {
	documents := []Document{
		{ID: "ok", Text: "Le chat dort."},
		{ID: "bad", Text: "The crash happened."},
	}
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{failWord: "crash"}, documents, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Failed()) != 0 {
		t.Fatalf("expected degraded documents to be analyzed, got %+v", report.Failed())
	}
	if bad, _ := report.Entry("bad"); bad.Passages[0].ModelFailures != 1 {
		t.Errorf("expected a degraded span, got %+v", bad.Passages)
	}

	config := Config{Options: langid.Options{Policy: langid.FailurePropagate}}
	report, err = AnalyzeCorpus(context.Background(), &keywordPredictor{failWord: "crash"}, documents, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].ID != "bad" || !errors.Is(failed[0].Err(), langid.ErrModelInvocation) {
		t.Fatalf("expected only bad to fail with a model error, got %+v", failed)
	}
}

func TestAnalyzeCorpus_ConfigurationAborts(t *testing.T) {
	predictor := langid.PredictorFunc(func(ctx context.Context, text string, k int) ([]langid.Prediction, error) {
		return nil, fmt.Errorf("%w: model file vanished", langid.ErrConfiguration)
	})
	documents := []Document{{ID: "a", Text: "Le chat"}, {ID: "b", Text: "Der Hund"}}
	report, err := AnalyzeCorpus(context.Background(), predictor, documents, Config{})
	if !errors.Is(err, langid.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
	if _, err := AnalyzeCorpus(context.Background(), nil, documents, Config{}); !errors.Is(err, langid.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing model, got %v", err)
	}
	if _, err := AnalyzeCorpus(context.Background(), predictor, documents, Config{Workers: -1}); !errors.Is(err, langid.ErrConfiguration) {
		t.Fatalf("expected configuration error for workers, got %v", err)
	}
}

func TestAnalyzeCorpus_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := AnalyzeCorpus(ctx, &keywordPredictor{}, []Document{{ID: "a", Text: "Le chat"}}, Config{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(report.Failed()) != 1 {
		t.Fatalf("expected the unscheduled document to fail, got %+v", report.Entries)
	}
}

func TestOrchestrator_WorkerBound(t *testing.T) {
	predictor := &keywordPredictor{delay: 5 * time.Millisecond}
	var documents []Document
	for i := 0; i < 12; i++ {
		documents = append(documents, Document{ID: fmt.Sprintf("doc-%d", i), Text: "Le chat dort."})
	}
	var progressed int32
	orchestrator, err := New(predictor, Config{Workers: 3}, WithProgress(func(current, total int, id string) {
		atomic.AddInt32(&progressed, 1)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orchestrator.Analyze(context.Background(), documents); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if predictor.peak > 3 {
		t.Errorf("expected at most 3 concurrent model calls, got %d", predictor.peak)
	}
	if progressed != 12 {
		t.Errorf("expected 12 progress callbacks, got %d", progressed)
	}
}

func TestOrchestrator_Cache(t *testing.T) {
	results := cache.NewResults()
	predictor := &keywordPredictor{}
	documents := []Document{{ID: "a", Text: "Le chat dort."}, {ID: "b", Text: "Der Hund bellt."}}
	orchestrator, err := New(predictor, Config{}, WithCache(results, "keywords"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orchestrator.Analyze(context.Background(), documents); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := atomic.LoadInt32(&predictor.calls)
	report, err := orchestrator.Analyze(context.Background(), documents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&predictor.calls) != calls {
		t.Errorf("expected cached documents to skip the model")
	}
	if entry, _ := report.Entry("a"); !entry.Cached || entry.Passages[0].Language != "fr" {
		t.Errorf("expected cached fr passages, got %+v", entry)
	}

	other, _ := New(predictor, Config{Config: passageConfig(segment.Paragraph)}, WithCache(results, "keywords"))
	if _, err := other.Analyze(context.Background(), documents); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&predictor.calls) == calls {
		t.Errorf("expected a different configuration to miss the cache")
	}
}

func TestOrchestrator_CacheSkipsDegraded(t *testing.T) {
	results := cache.NewResults()
	documents := []Document{{ID: "a", Text: "Le chat dort."}}
	failing, err := New(&keywordPredictor{failWord: "chat"}, Config{}, WithCache(results, "keywords"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := failing.Analyze(context.Background(), documents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry, _ := report.Entry("a"); entry.Passages[0].ModelFailures != 1 {
		t.Fatalf("expected a degraded span, got %+v", entry.Passages)
	}
	if results.Size() != 0 {
		t.Fatalf("expected degraded passages not to be cached, got %d entries", results.Size())
	}

	healthy := &keywordPredictor{}
	recovered, _ := New(healthy, Config{}, WithCache(results, "keywords"))
	report, err = recovered.Analyze(context.Background(), documents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, _ := report.Entry("a")
	if entry.Cached || atomic.LoadInt32(&healthy.calls) == 0 {
		t.Errorf("expected the recovered model to be called")
	}
	if entry.Passages[0].Language != "fr" || entry.Passages[0].ModelFailures != 0 {
		t.Errorf("expected fr without failures, got %+v", entry.Passages[0])
	}
	if results.Size() != 1 {
		t.Errorf("expected the healthy result to be cached, got %d entries", results.Size())
	}
}

func TestLanguageProportions(t *testing.T) {
	documents := []Document{
		{ID: "mixed", Text: "Le chat dort.\n\nDer Hund bellt!\n\n"},
		{ID: "none", Text: "12345"},
	}
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{}, documents, Config{Config: passageConfig(segment.Paragraph)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proportions := LanguageProportions(report)
	mixed := proportions.Documents["mixed"]
	// "Le chat dort.\n\n" is 15 runes, "Der Hund bellt!\n\n" is 17
	if mixed["fr"] != 46.88 || mixed["de"] != 53.13 {
		t.Errorf("expected fr 46.88 de 53.13, got %v", mixed)
	}
	if len(proportions.Documents["none"]) != 0 {
		t.Errorf("expected no languages, got %v", proportions.Documents["none"])
	}
	if proportions.Corpus["fr"] != 46.88 {
		t.Errorf("expected corpus fr 46.88, got %v", proportions.Corpus)
	}
}

func TestFilters(t *testing.T) {
	documents := []Document{
		{ID: "ja", Text: "東京タワーに行きました。"},
		{ID: "zh", Text: "我们去北京。"},
		{ID: "fr", Text: "Le chat dort sur le canapé."},
		{ID: "en", Text: "The cat sleeps."},
	}
	report, err := AnalyzeCorpus(context.Background(), &keywordPredictor{}, documents, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := FilterByCharacters(report, []string{"japanese"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Document != "ja" {
		t.Errorf("expected only ja, got %+v", matches)
	}
	matches, _ = FilterByCharacters(report, []string{"han"}, 0)
	if len(matches) != 2 {
		t.Errorf("expected ja and zh for han, got %+v", matches)
	}
	if _, err := FilterByCharacters(report, []string{"klingon"}, 0); !errors.Is(err, ErrInput) {
		t.Errorf("expected input error, got %v", err)
	}

	matches, err = FilterByLanguage(report, []string{"fr", "en"}, LanguageCriteria{Threshold: 70, MinLength: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Document != "fr" {
		t.Errorf("expected fr above 70%%, got %+v", matches)
	}
	matches, _ = ExtractLanguage(report, "en", LanguageCriteria{Threshold: 50, MinMargin: 60})
	if len(matches) != 0 {
		t.Errorf("expected margin to reject en, got %+v", matches)
	}
	matches, _ = ExtractLanguage(report, "en", LanguageCriteria{Threshold: 50, MinMargin: 50})
	if len(matches) != 1 {
		t.Errorf("expected en with margin 55, got %+v", matches)
	}
	if _, err := FilterByLanguage(report, []string{"fr"}, LanguageCriteria{Threshold: 150}); !errors.Is(err, ErrInput) {
		t.Errorf("expected input error, got %v", err)
	}
}
