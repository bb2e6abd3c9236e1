package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/segment"
	"github.com/viant/langprobe/service"
)

const (
	descClassifyText   = "Classify every character of a text into a script category and return category percentages."
	descDetectLanguage = "Detect the languages of a text, ordered by descending confidence."
	descDetectCode     = "Report whether a text looks like source code using code symbol ratio and keywords."
	descDetectMath     = "Report whether a text contains mathematical notation using math symbol ratio."
	descAnalyzeText    = "Split a text into passages of consistent script and language."
	descAnalyzeCorpus  = "Analyze every document of a configured corpus or location and return per document passages and language proportions."
)

func registerTools(registry *protoserver.Registry, h *Handler) error {
	if err := protoserver.RegisterTool[*ClassifyTextInput, *ClassifyTextOutput](registry, "classify_text", descClassifyText, func(ctx context.Context, in *ClassifyTextInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.classifyText(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*DetectLanguageInput, *DetectLanguageOutput](registry, "detect_language", descDetectLanguage, func(ctx context.Context, in *DetectLanguageInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.detectLanguage(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*DetectNotationInput, *DetectCodeOutput](registry, "detect_code", descDetectCode, func(ctx context.Context, in *DetectNotationInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.detectCode(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*DetectNotationInput, *DetectMathOutput](registry, "detect_math", descDetectMath, func(ctx context.Context, in *DetectNotationInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.detectMath(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*AnalyzeTextInput, *AnalyzeTextOutput](registry, "analyze_text", descAnalyzeText, func(ctx context.Context, in *AnalyzeTextInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.analyzeText(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*AnalyzeCorpusInput, *AnalyzeCorpusOutput](registry, "analyze_corpus", descAnalyzeCorpus, func(ctx context.Context, in *AnalyzeCorpusInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.analyzeCorpus(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	return nil
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	b, _ := json.Marshal(payload)
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(b)},
		},
		StructuredContent: map[string]any{"result": payload},
	}, nil
}

func (h *Handler) classifyText(_ context.Context, in *ClassifyTextInput) (*ClassifyTextOutput, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &ClassifyTextInput{}
	}
	return &ClassifyTextOutput{Proportions: h.service.ClassifyText(in.Text)}, nil
}

func (h *Handler) detectLanguage(ctx context.Context, in *DetectLanguageInput) (*DetectLanguageOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &DetectLanguageInput{}
	}
	languages, err := h.service.DetectLanguage(ctx, in.Text, in.TopK, in.MinConfidence)
	if err != nil {
		return nil, err
	}
	if h.metricsLog {
		log.Printf("mcp metric op=detect_language languages=%d dur=%s", len(languages), time.Since(start))
	}
	return &DetectLanguageOutput{Languages: languages}, nil
}

func (h *Handler) detectCode(_ context.Context, in *DetectNotationInput) (*DetectCodeOutput, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &DetectNotationInput{}
	}
	return &DetectCodeOutput{CodeReport: h.service.DetectCode(in.Text, in.Threshold)}, nil
}

func (h *Handler) detectMath(_ context.Context, in *DetectNotationInput) (*DetectMathOutput, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &DetectNotationInput{}
	}
	return &DetectMathOutput{MathReport: h.service.DetectMath(in.Text, in.Threshold)}, nil
}

func (h *Handler) analyzeText(ctx context.Context, in *AnalyzeTextInput) (*AnalyzeTextOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &AnalyzeTextInput{}
	}
	passages, err := h.service.AnalyzeText(ctx, in.Text, h.analysisConfig(in.AnalysisInput))
	if err != nil {
		return nil, err
	}
	if h.metricsLog {
		log.Printf("mcp metric op=analyze_text passages=%d dur=%s", len(passages), time.Since(start))
	}
	return &AnalyzeTextOutput{Passages: passages}, nil
}

func (h *Handler) analyzeCorpus(ctx context.Context, in *AnalyzeCorpusInput) (*AnalyzeCorpusOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &AnalyzeCorpusInput{}
	}
	if strings.TrimSpace(in.Corpus) == "" && strings.TrimSpace(in.Path) == "" {
		return nil, fmt.Errorf("mcp: missing corpus or path")
	}
	spec, err := h.service.Config().ResolveCorpus(service.ResolveCorpusRequest{
		Name:        in.Corpus,
		Path:        in.Path,
		Include:     in.Include,
		Exclude:     in.Exclude,
		MaxFileSize: in.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	result, err := h.service.AnalyzeCorpus(ctx, service.AnalyzeCorpusRequest{
		Corpus:  spec,
		Config:  h.analysisConfig(in.AnalysisInput),
		Persist: in.Persist,
	})
	if err != nil {
		return nil, err
	}
	out := &AnalyzeCorpusOutput{Stats: result.Stats, Proportions: result.Proportions, Run: result.Run}
	for _, entry := range result.Report.Entries {
		summary := DocumentSummary{ID: entry.ID, Status: entry.Status, Error: entry.Error, Cached: entry.Cached, Count: len(entry.Passages)}
		if in.Passages {
			summary.Passages = entry.Passages
		}
		out.Documents = append(out.Documents, summary)
	}
	if h.metricsLog {
		log.Printf("mcp metric op=analyze_corpus path=%s documents=%d dur=%s", spec.Path, len(out.Documents), time.Since(start))
	}
	return out, nil
}

// analysisConfig returns nil when the input carries no override.
func (h *Handler) analysisConfig(in AnalysisInput) *corpus.Config {
	if in == (AnalysisInput{}) {
		return nil
	}
	cfg := h.service.Config().Analysis
	if in.Granularity != "" {
		cfg.Granularity = segment.Granularity(in.Granularity)
	}
	if in.ScriptThreshold > 0 {
		cfg.ScriptThreshold = in.ScriptThreshold
	}
	if in.LanguageThreshold > 0 {
		cfg.LanguageThreshold = in.LanguageThreshold
	}
	if in.TopK != 0 {
		cfg.TopK = in.TopK
	}
	if in.MinConfidence > 0 {
		cfg.MinConfidence = in.MinConfidence
	}
	if in.MinLength > 0 {
		cfg.MinLength = in.MinLength
	}
	return &cfg
}
