package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/langprobe/matching"
	"github.com/viant/langprobe/matching/option"
)

// ParseCSV splits comma-separated patterns into a slice.
func ParseCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResolveCorpus resolves a named corpus from config, or an ad hoc path.
// Request filters extend the configured ones.
func (c *Config) ResolveCorpus(req ResolveCorpusRequest) (CorpusSpec, error) {
	spec := CorpusSpec{Name: req.Name, Path: strings.TrimSpace(req.Path)}
	if spec.Path == "" {
		if req.Name == "" {
			return spec, fmt.Errorf("corpus name or path is required")
		}
		root, ok := c.Corpora[req.Name]
		if !ok || strings.TrimSpace(root.Path) == "" {
			return spec, fmt.Errorf("corpus %q not found in config", req.Name)
		}
		spec.Path = root.Path
		spec.Include = append(spec.Include, root.Include...)
		spec.Exclude = append(spec.Exclude, root.Exclude...)
		spec.MaxFileSize = root.MaxFileSize
	}
	spec.Include = append(spec.Include, req.Include...)
	spec.Exclude = append(spec.Exclude, req.Exclude...)
	if req.MaxFileSize > 0 {
		spec.MaxFileSize = req.MaxFileSize
	}
	return spec, nil
}

// CorpusNames returns configured corpus names in order.
func (c *Config) CorpusNames() []string {
	names := make([]string, 0, len(c.Corpora))
	for name := range c.Corpora {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newMatcher(spec CorpusSpec) *matching.Manager {
	opts := []option.Option{option.WithDefaultExclusionPatterns()}
	if len(spec.Exclude) > 0 {
		opts = append(opts, option.WithExclusionPatterns(spec.Exclude...))
	}
	if len(spec.Include) > 0 {
		opts = append(opts, option.WithInclusionPatterns(spec.Include...))
	}
	if spec.MaxFileSize > 0 {
		opts = append(opts, option.WithMaxFileSize(spec.MaxFileSize))
	}
	return matching.New(opts...)
}
