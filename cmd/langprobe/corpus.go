package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/segment"
	"github.com/viant/langprobe/service"
)

// sourceFlags select the report a command works on: a persisted run or a fresh analysis.
type sourceFlags struct {
	corpus   *string
	path     *string
	include  *string
	exclude  *string
	maxSize  *int
	run      *string
	persist  *bool
	progress *bool
}

func addSourceFlags(flags *flag.FlagSet) *sourceFlags {
	return &sourceFlags{
		corpus:   flags.String("corpus", "", "corpus name from config"),
		path:     flags.String("path", "", "corpus location (local path or afs URL)"),
		include:  flags.String("include", "", "comma-separated include patterns"),
		exclude:  flags.String("exclude", "", "comma-separated exclude patterns"),
		maxSize:  flags.Int("max-size", 0, "max file size in bytes"),
		run:      flags.String("run", "", "persisted run id (skips analysis)"),
		persist:  flags.Bool("persist", false, "save the run to the configured store"),
		progress: flags.Bool("progress", false, "show analysis progress"),
	}
}

func (s *sourceFlags) spec(cfg *service.Config) service.CorpusSpec {
	spec, err := cfg.ResolveCorpus(service.ResolveCorpusRequest{
		Name:        *s.corpus,
		Path:        *s.path,
		Include:     service.ParseCSV(*s.include),
		Exclude:     service.ParseCSV(*s.exclude),
		MaxFileSize: *s.maxSize,
	})
	if err != nil {
		log.Fatalf("resolve corpus: %v", err)
	}
	return spec
}

func (s *sourceFlags) analyze(ctx context.Context, svc *service.Service) *service.AnalyzeCorpusResult {
	if *s.run != "" {
		run, report, err := svc.LoadRun(ctx, *s.run)
		if err != nil {
			log.Fatalf("load run: %v", err)
		}
		return &service.AnalyzeCorpusResult{Report: report, Run: run, Proportions: corpus.LanguageProportions(report)}
	}
	result, err := svc.AnalyzeCorpus(ctx, service.AnalyzeCorpusRequest{
		Corpus:   s.spec(svc.Config()),
		Persist:  *s.persist,
		Logf:     log.Printf,
		Progress: progressPrinter(*s.progress),
	})
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}
	return result
}

func analyzeCorpusCmd(args []string) {
	flags := flag.NewFlagSet("analyze-corpus", flag.ExitOnError)
	source := addSourceFlags(flags)
	model := addModelFlags(flags)
	analysis := addAnalysisFlags(flags)
	mcpAddr := flags.String("mcp-addr", "", "analyze through a running MCP server instead of in process")
	debugSleep := flags.Int("debug-sleep", 0, "debug: sleep N seconds before execution (for gops)")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	maybeDebugSleep("analyze-corpus", *debugSleep)

	if *mcpAddr != "" {
		out, err := mcpAnalyzeCorpus(ctx, *mcpAddr, source.toolInput())
		if err != nil {
			log.Fatalf("analyze-corpus: %v", err)
		}
		writeJSON(out)
		return
	}
	cfg := model.loadConfig()
	analysis.apply(&cfg.Analysis)
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	writeJSON(source.analyze(ctx, svc))
}

func languageProportionsCmd(args []string) {
	flags := flag.NewFlagSet("language-proportions", flag.ExitOnError)
	source := addSourceFlags(flags)
	model := addModelFlags(flags)
	analysis := addAnalysisFlags(flags)
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cfg := model.loadConfig()
	analysis.apply(&cfg.Analysis)
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	writeJSON(source.analyze(ctx, svc).Proportions)
}

func filterByCharactersCmd(args []string) {
	flags := flag.NewFlagSet("filter-by-characters", flag.ExitOnError)
	source := addSourceFlags(flags)
	model := addModelFlags(flags)
	analysis := addAnalysisFlags(flags)
	types := flags.String("types", "", "comma-separated character types (e.g. japanese,han,cyrillic)")
	minLength := flags.Int("min-passage-length", 0, "minimum passage length in runes")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cfg := model.loadConfig()
	if *analysis.granularity == "" {
		cfg.Analysis.Granularity = segment.Lines
	}
	analysis.apply(&cfg.Analysis)
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	matches, err := corpus.FilterByCharacters(source.analyze(ctx, svc).Report, service.ParseCSV(*types), *minLength)
	if err != nil {
		log.Fatalf("filter-by-characters: %v", err)
	}
	writeJSON(matches)
}

func filterByLanguageCmd(name string, args []string) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	source := addSourceFlags(flags)
	model := addModelFlags(flags)
	analysis := addAnalysisFlags(flags)
	languages := flags.String("languages", "", "comma-separated language codes")
	threshold := flags.Float64("threshold", 50, "minimum top language confidence percentage")
	minMargin := flags.Float64("min-margin", 0, "minimum margin between top two languages, percentage")
	minLength := flags.Int("min-passage-length", 0, "minimum passage length in runes")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cfg := model.loadConfig()
	analysis.apply(&cfg.Analysis)
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	report := source.analyze(ctx, svc).Report
	criteria := corpus.LanguageCriteria{Threshold: *threshold, MinMargin: *minMargin, MinLength: *minLength}
	codes := service.ParseCSV(*languages)
	var matches []corpus.Match
	var err error
	if name == "extract-language" {
		if len(codes) != 1 {
			log.Fatalf("%s: exactly one language is required", name)
		}
		matches, err = corpus.ExtractLanguage(report, codes[0], criteria)
	} else {
		matches, err = corpus.FilterByLanguage(report, codes, criteria)
	}
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	writeJSON(matches)
}

func runsCmd(args []string) {
	flags := flag.NewFlagSet("runs", flag.ExitOnError)
	model := addModelFlags(flags)
	dsn := flags.String("dsn", "", "store dsn (overrides config)")
	driver := flags.String("driver", "", "store driver: sqlite|postgres|mysql (auto-detect if empty)")
	limit := flags.Int("limit", 20, "max runs listed")
	id := flags.String("id", "", "show the report of a run")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cfg := model.loadConfig()
	if *dsn != "" {
		cfg.Store = service.StoreConfig{DSN: *dsn, Driver: *driver}
	}
	svc := newService(cfg)
	defer func() { _ = svc.Close() }()
	if *id != "" {
		run, report, err := svc.LoadRun(ctx, *id)
		if err != nil {
			log.Fatalf("runs: %v", err)
		}
		writeJSON(service.AnalyzeCorpusResult{Run: run, Report: report, Proportions: corpus.LanguageProportions(report)})
		return
	}
	runs, err := svc.Runs(ctx, *limit)
	if err != nil {
		log.Fatalf("runs: %v", err)
	}
	writeJSON(runs)
}
