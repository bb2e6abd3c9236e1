package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/service"
)

var keywords = langid.PredictorFunc(func(ctx context.Context, text string, k int) ([]langid.Prediction, error) {
	switch {
	case strings.Contains(text, "chat"):
		return []langid.Prediction{{Label: "fr", Confidence: 0.9}}, nil
	case strings.Contains(text, "Hund"):
		return []langid.Prediction{{Label: "de", Confidence: 0.8}}, nil
	}
	return nil, nil
})

func newTestHandler(t *testing.T, cfg *service.Config, opts ...service.Option) *Handler {
	t.Helper()
	opts = append([]service.Option{service.WithConfig(cfg), service.WithPredictor(keywords, "keywords")}, opts...)
	svc, err := service.NewService(opts...)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return &Handler{service: svc}
}

func TestHandler_TextTools(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t, &service.Config{})

	classified, err := h.classifyText(ctx, &ClassifyTextInput{Text: "abcd"})
	if err != nil || classified.Proportions["latin"] != 100 {
		t.Errorf("expected latin 100, got %+v (%v)", classified, err)
	}
	detected, err := h.detectLanguage(ctx, &DetectLanguageInput{Text: "Der Hund bellt."})
	if err != nil {
		t.Fatalf("detectLanguage: %v", err)
	}
	if top, _ := detected.Languages.Top(); top.Code != "de" {
		t.Errorf("expected de, got %v", detected.Languages)
	}
	code, _ := h.detectCode(ctx, &DetectNotationInput{Text: "plain words only"})
	if code.IsCodeLike {
		t.Errorf("expected prose, got %+v", code)
	}
	math, _ := h.detectMath(ctx, &DetectNotationInput{Text: "a = b + c"})
	if !math.IsMath {
		t.Errorf("expected math, got %+v", math)
	}
	analyzed, err := h.analyzeText(ctx, &AnalyzeTextInput{Text: "Le chat dort. Der Hund bellt."})
	if err != nil {
		t.Fatalf("analyzeText: %v", err)
	}
	if len(analyzed.Passages) != 2 {
		t.Errorf("expected 2 passages, got %+v", analyzed.Passages)
	}
	if _, err := h.analyzeText(ctx, &AnalyzeTextInput{Text: "x", AnalysisInput: AnalysisInput{Granularity: "chapter"}}); err == nil {
		t.Errorf("expected granularity error")
	}
}

func TestHandler_AnalyzeCorpus(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/mcp-corpus"
	for name, content := range map[string]string{"a.txt": "Le chat dort.", "b.txt": "Der Hund bellt."} {
		if err := fs.Upload(ctx, base+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}
	h := newTestHandler(t, &service.Config{Corpora: map[string]service.CorpusConfig{"docs": {Path: base}}}, service.WithFS(fs))

	if _, err := h.analyzeCorpus(ctx, &AnalyzeCorpusInput{}); err == nil {
		t.Fatalf("expected missing corpus error")
	}
	out, err := h.analyzeCorpus(ctx, &AnalyzeCorpusInput{Corpus: "docs", Passages: true})
	if err != nil {
		t.Fatalf("analyzeCorpus: %v", err)
	}
	if len(out.Documents) != 2 || out.Stats.Extracted != 2 {
		t.Fatalf("expected 2 documents, got %+v", out)
	}
	for _, document := range out.Documents {
		if document.Count != 1 || len(document.Passages) != 1 {
			t.Errorf("expected one passage for %v, got %+v", document.ID, document)
		}
	}
	if out.Proportions.Corpus["fr"] == 0 || out.Proportions.Corpus["de"] == 0 {
		t.Errorf("expected fr and de shares, got %v", out.Proportions.Corpus)
	}
}
