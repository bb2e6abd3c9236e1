package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/langprobe/ingest/extract"
	"github.com/viant/langprobe/matching"
)

// Loader walks a corpus location and extracts document text
type Loader struct {
	fs        Service
	matcher   *matching.Manager
	extractor *extract.Factory
	logf      func(format string, args ...any)
}

// Option configures a Loader
type Option func(l *Loader)

// WithFS sets a custom storage service
func WithFS(fs Service) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithMatcher sets include/exclude rules
func WithMatcher(matcher *matching.Manager) Option {
	return func(l *Loader) {
		l.matcher = matcher
	}
}

// WithExtractors sets the extractor factory
func WithExtractors(factory *extract.Factory) Option {
	return func(l *Loader) {
		l.extractor = factory
	}
}

// WithLogf sets a diagnostic logger
func WithLogf(logf func(format string, args ...any)) Option {
	return func(l *Loader) {
		l.logf = logf
	}
}

// New creates a loader with default afs storage, matching rules and extractors
func New(opts ...Option) *Loader {
	ret := &Loader{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = NewAFS(nil)
	}
	if ret.matcher == nil {
		ret.matcher = matching.New()
	}
	if ret.extractor == nil {
		ret.extractor = extract.NewFactory()
	}
	return ret
}

// Load returns the documents under location with ids relative to it.
// Extraction failures become documents carrying the error.
func (l *Loader) Load(ctx context.Context, location string) ([]corpus.Document, *Stats, error) {
	base, err := normalize(location)
	if err != nil {
		return nil, nil, err
	}
	stats := &Stats{}
	var documents []corpus.Document
	if err = l.load(ctx, base, base, stats, &documents); err != nil {
		return nil, nil, err
	}
	return documents, stats, nil
}

func (l *Loader) load(ctx context.Context, base, location string, stats *Stats, documents *[]corpus.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, err := l.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to list %v: %w", location, err)
	}
	for _, object := range objects {
		if url.Equals(object.URL(), location) && object.IsDir() {
			continue
		}
		rel := relative(base, object.URL())
		if rel == "" && !object.IsDir() && url.Equals(object.URL(), base) {
			rel = object.Name()
		}
		if rel == "" {
			continue
		}
		if object.IsDir() {
			if l.matcher.IsExcludedDir(rel) {
				continue
			}
			if err := l.load(ctx, base, url.Join(location, object.Name()), stats, documents); err != nil {
				return err
			}
			continue
		}
		stats.Total++
		if l.matcher.IsExcluded(rel, int(object.Size())) {
			stats.Skipped++
			continue
		}
		*documents = append(*documents, l.document(ctx, rel, object, stats))
	}
	return nil
}

func (l *Loader) document(ctx context.Context, rel string, object storage.Object, stats *Stats) corpus.Document {
	document := corpus.Document{ID: rel}
	data, err := l.fs.Download(ctx, object)
	if err == nil {
		data, err = l.extractor.Extract(rel, data)
	}
	if err != nil {
		stats.Failed++
		document.Err = fmt.Errorf("failed to extract %v: %w", rel, err)
		if l.logf != nil {
			l.logf("ingest: %v", document.Err)
		}
		return document
	}
	stats.Extracted++
	document.Text = string(data)
	return document
}

// normalize turns relative and absolute OS paths into file URLs
func normalize(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		var err error
		if norm, err = filepath.Abs(norm); err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
	}
	if url.Scheme(norm, "") == "" {
		norm = url.ToFileURL(norm)
	}
	return strings.TrimRight(norm, "/"), nil
}

// relative returns the object path below base using slash separators
func relative(base, objectURL string) string {
	basePath := strings.TrimRight(url.Path(base), "/")
	objectPath := url.Path(objectURL)
	if !strings.HasPrefix(objectPath, basePath+"/") {
		return ""
	}
	return strings.TrimPrefix(objectPath, basePath+"/")
}
