package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/viant/langprobe/filter"
	"github.com/viant/langprobe/service"
)

func classifyTextCmd(args []string) {
	flags := flag.NewFlagSet("classify-text", flag.ExitOnError)
	input := addTextFlags(flags)
	flags.Parse(args)

	svc := newService(&service.Config{})
	writeJSON(svc.ClassifyText(input.read(context.Background())))
}

func detectLanguageCmd(args []string) {
	flags := flag.NewFlagSet("detect-language", flag.ExitOnError)
	input := addTextFlags(flags)
	model := addModelFlags(flags)
	topK := flags.Int("top-k", 0, "languages returned (-1 returns all)")
	minConfidence := flags.Float64("min-confidence", 0, "drop languages below this confidence")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	svc := newService(model.loadConfig())
	defer func() { _ = svc.Close() }()
	var threshold *float64
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "min-confidence" {
			threshold = minConfidence
		}
	})
	languages, err := svc.DetectLanguage(ctx, input.read(ctx), *topK, threshold)
	if err != nil {
		log.Fatalf("detect-language: %v", err)
	}
	writeJSON(languages)
}

func detectCodeCmd(args []string) {
	flags := flag.NewFlagSet("detect-code", flag.ExitOnError)
	input := addTextFlags(flags)
	threshold := flags.Float64("threshold", 0, "code symbol ratio percentage (default 1.0)")
	flags.Parse(args)

	svc := newService(&service.Config{})
	writeJSON(svc.DetectCode(input.read(context.Background()), *threshold))
}

func detectMathCmd(args []string) {
	flags := flag.NewFlagSet("detect-math", flag.ExitOnError)
	input := addTextFlags(flags)
	threshold := flags.Float64("threshold", 0, "math symbol ratio percentage (default 1.0)")
	flags.Parse(args)

	svc := newService(&service.Config{})
	writeJSON(svc.DetectMath(input.read(context.Background()), *threshold))
}

func scriptsCmd(name string, args []string) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	input := addTextFlags(flags)
	scripts := flags.String("scripts", "", "comma-separated categories, aliases or Unicode script names")
	math := flags.Bool("math", false, "select math symbols")
	code := flags.Bool("code", false, "select code blocks, inline code, keywords and code symbols")
	keepWhitespace := flags.Bool("keep-whitespace", false, "keep whitespace when extracting")
	flags.Parse(args)

	options := filter.Options{Scripts: service.ParseCSV(*scripts), Math: *math, Code: *code, KeepWhitespace: *keepWhitespace}
	svc := newService(&service.Config{})
	text := input.read(context.Background())
	var result string
	var err error
	if name == "remove-scripts" {
		result, err = svc.RemoveScripts(text, options)
	} else {
		result, err = svc.ExtractScripts(text, options)
	}
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	writeJSON(map[string]string{"text": result})
}

func analyzeTextCmd(args []string) {
	flags := flag.NewFlagSet("analyze-text", flag.ExitOnError)
	input := addTextFlags(flags)
	model := addModelFlags(flags)
	analysis := addAnalysisFlags(flags)
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cfg := model.loadConfig()
	analysis.apply(&cfg.Analysis)
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	passages, err := svc.AnalyzeText(ctx, input.read(ctx), nil)
	if err != nil {
		log.Fatalf("analyze-text: %v", err)
	}
	writeJSON(passages)
}
