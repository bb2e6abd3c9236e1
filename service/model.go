package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/langid/fasttext"
	"github.com/viant/langprobe/langid/lexicon"
)

// OpenModel loads the configured predictor and returns it with a model identifier
// used to key cached results.
func OpenModel(ctx context.Context, fs afs.Service, cfg ModelConfig) (langid.Predictor, string, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		kind = ModelLexicon
		if cfg.URL != "" {
			kind = ModelFastText
		}
	}
	switch kind {
	case ModelLexicon:
		if cfg.Path == "" {
			model, err := lexicon.Default()
			return model, "lexicon:builtin", err
		}
		if fs == nil {
			fs = afs.New()
		}
		model, err := lexicon.Load(ctx, fs, cfg.Path)
		if err != nil {
			return nil, "", err
		}
		return model, "lexicon:" + cfg.Path, nil
	case ModelFastText:
		if cfg.URL == "" {
			return nil, "", fmt.Errorf("%w: fasttext model requires url", langid.ErrConfiguration)
		}
		var opts []fasttext.ClientOption
		if cfg.TimeoutMs > 0 {
			opts = append(opts, fasttext.WithTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond))
		}
		model, err := fasttext.Open(ctx, cfg.Name, cfg.URL, opts...)
		if err != nil {
			return nil, "", err
		}
		return model, "fasttext:" + cfg.URL + "/" + cfg.Name, nil
	}
	return nil, "", fmt.Errorf("%w: unsupported model kind %q", langid.ErrConfiguration, cfg.Kind)
}
