package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/gops/agent"
	"github.com/viant/afs"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/ingest/extract"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/segment"
	"github.com/viant/langprobe/service"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "classify-text":
		classifyTextCmd(os.Args[2:])
	case "detect-language":
		detectLanguageCmd(os.Args[2:])
	case "detect-code":
		detectCodeCmd(os.Args[2:])
	case "detect-math":
		detectMathCmd(os.Args[2:])
	case "remove-scripts":
		scriptsCmd("remove-scripts", os.Args[2:])
	case "extract-scripts":
		scriptsCmd("extract-scripts", os.Args[2:])
	case "analyze-text":
		analyzeTextCmd(os.Args[2:])
	case "analyze-corpus":
		analyzeCorpusCmd(os.Args[2:])
	case "language-proportions":
		languageProportionsCmd(os.Args[2:])
	case "filter-by-characters":
		filterByCharactersCmd(os.Args[2:])
	case "filter-by-language":
		filterByLanguageCmd("filter-by-language", os.Args[2:])
	case "extract-language":
		filterByLanguageCmd("extract-language", os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: langprobe <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  classify-text         Script category percentages of a text")
	fmt.Fprintln(os.Stderr, "  detect-language       Ranked languages of a text")
	fmt.Fprintln(os.Stderr, "  detect-code           Code-like content report")
	fmt.Fprintln(os.Stderr, "  detect-math           Mathematical notation report")
	fmt.Fprintln(os.Stderr, "  remove-scripts        Delete characters of selected scripts")
	fmt.Fprintln(os.Stderr, "  extract-scripts       Keep only characters of selected scripts")
	fmt.Fprintln(os.Stderr, "  analyze-text          Passages of a single text")
	fmt.Fprintln(os.Stderr, "  analyze-corpus        Passages of every document under a location")
	fmt.Fprintln(os.Stderr, "  language-proportions  Per document and corpus language shares")
	fmt.Fprintln(os.Stderr, "  filter-by-characters  Passages containing character types")
	fmt.Fprintln(os.Stderr, "  filter-by-language    Confident passages of languages")
	fmt.Fprintln(os.Stderr, "  extract-language      Confident passages of one language")
	fmt.Fprintln(os.Stderr, "  runs                  List or show persisted runs")
	fmt.Fprintln(os.Stderr, "  serve                 Start the MCP server")
}

// modelFlags select the configuration and language model.
type modelFlags struct {
	config    *string
	modelPath *string
	modelURL  *string
	modelKind *string
	modelName *string
}

func addModelFlags(flags *flag.FlagSet) *modelFlags {
	return &modelFlags{
		config:    flags.String("config", "", "config yaml (optional, defaults to ~/langprobe/config.yaml if present)"),
		modelPath: flags.String("model-path", "", "lexicon model location (or "+service.ModelPathEnv+")"),
		modelURL:  flags.String("model-url", "", "fastText endpoint URL (or "+service.ModelURLEnv+")"),
		modelKind: flags.String("model-kind", "", "model kind: lexicon|fasttext"),
		modelName: flags.String("model-name", "", "fastText model name"),
	}
}

func (m *modelFlags) loadConfig() *service.Config {
	if err := service.LoadEnv(".env"); err != nil {
		log.Fatalf("load env: %v", err)
	}
	cfg := &service.Config{}
	if path := resolveConfigPath(*m.config); path != "" {
		var err error
		if cfg, err = service.LoadConfig(path); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *m.modelPath != "" {
		cfg.Model.Path = *m.modelPath
	}
	if *m.modelURL != "" {
		cfg.Model.URL = *m.modelURL
	}
	if *m.modelKind != "" {
		cfg.Model.Kind = *m.modelKind
	}
	if *m.modelName != "" {
		cfg.Model.Name = *m.modelName
	}
	return cfg
}

// analysisFlags override the configured analysis settings.
type analysisFlags struct {
	granularity       *string
	windowSize        *int
	blockSize         *int
	scriptThreshold   *float64
	languageThreshold *float64
	minLength         *int
	topK              *int
	minConfidence     *float64
	failurePolicy     *string
	workers           *int
}

func addAnalysisFlags(flags *flag.FlagSet) *analysisFlags {
	return &analysisFlags{
		granularity:       flags.String("granularity", "", "segmentation: sentence|paragraph|window|lines"),
		windowSize:        flags.Int("window-size", 0, "window length in runes"),
		blockSize:         flags.Int("block-size", 0, "non-empty lines per span for lines granularity"),
		scriptThreshold:   flags.Float64("script-threshold", -1, "minimum dominant script proportion [0,1]"),
		languageThreshold: flags.Float64("language-threshold", -1, "minimum top language confidence [0,1]"),
		minLength:         flags.Int("min-length", 0, "skip the model for spans shorter than N runes"),
		topK:              flags.Int("top-k", 0, "languages kept per list (-1 keeps all)"),
		minConfidence:     flags.Float64("min-confidence", 0, "drop languages below this confidence"),
		failurePolicy:     flags.String("failure-policy", "", "model failure policy: degrade|propagate"),
		workers:           flags.Int("workers", 0, "documents analyzed concurrently"),
	}
}

func (a *analysisFlags) apply(cfg *corpus.Config) {
	if *a.granularity != "" {
		cfg.Granularity = segment.Granularity(*a.granularity)
	}
	if *a.windowSize > 0 {
		cfg.WindowSize = *a.windowSize
	}
	if *a.blockSize > 0 {
		cfg.BlockSize = *a.blockSize
	}
	if *a.scriptThreshold >= 0 {
		cfg.ScriptThreshold = *a.scriptThreshold
	}
	if *a.languageThreshold >= 0 {
		cfg.LanguageThreshold = *a.languageThreshold
	}
	if *a.minLength > 0 {
		cfg.MinLength = *a.minLength
	}
	if *a.topK != 0 {
		cfg.TopK = *a.topK
	}
	if *a.minConfidence > 0 {
		cfg.MinConfidence = *a.minConfidence
	}
	if *a.failurePolicy != "" {
		policy, err := langid.ParseFailurePolicy(*a.failurePolicy)
		if err != nil {
			log.Fatalf("failure policy: %v", err)
		}
		cfg.Policy = policy
	}
	if *a.workers > 0 {
		cfg.Workers = *a.workers
	}
}

func newService(cfg *service.Config) *service.Service {
	svc, err := service.NewService(service.WithConfig(cfg))
	if err != nil {
		log.Fatalf("service init: %v", err)
	}
	return svc
}

// textFlags read text from --text, --file or stdin.
type textFlags struct {
	text *string
	file *string
}

func addTextFlags(flags *flag.FlagSet) *textFlags {
	return &textFlags{
		text: flags.String("text", "", "input text"),
		file: flags.String("file", "", "input file or URL (stdin when neither --text nor --file is set)"),
	}
}

func (t *textFlags) read(ctx context.Context) string {
	if *t.text != "" {
		return *t.text
	}
	if *t.file != "" {
		data, err := afs.New().DownloadWithURL(ctx, *t.file)
		if err != nil {
			log.Fatalf("read %v: %v", *t.file, err)
		}
		text, err := extract.NewFactory().Extract(*t.file, data)
		if err != nil {
			log.Fatalf("extract %v: %v", *t.file, err)
		}
		return string(text)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		log.Fatalf("read stdin: %v", err)
	}
	return string(data)
}

func writeJSON(v any) {
	encoder := json.NewEncoder(stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}

func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, "langprobe", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func progressPrinter(enabled bool) func(current, total int, id string) {
	if !enabled {
		return nil
	}
	lastLen := 0
	return func(current, total int, id string) {
		line := fmt.Sprintf("analyzed %d/%d %s", current, total, id)
		if lastLen > len(line) {
			line = line + strings.Repeat(" ", lastLen-len(line))
		}
		lastLen = len(line)
		fmt.Fprintf(os.Stderr, "\r%s", line)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func maybeDebugSleep(cmd string, seconds int) {
	if seconds <= 0 {
		seconds = intFromEnv("LANGPROBE_DEBUG_SLEEP")
	}
	if seconds <= 0 {
		return
	}
	log.Printf("debug: cmd=%s pid=%d sleep=%ds", cmd, os.Getpid(), seconds)
	time.Sleep(time.Duration(seconds) * time.Second)
}

func startGops() {
	if strings.TrimSpace(os.Getenv("LANGPROBE_GOPS")) != "1" {
		return
	}
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}

func intFromEnv(name string) int {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
