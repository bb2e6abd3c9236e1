package option

import (
	"bufio"
	"io"
	"strings"
)

// Options controls which corpus files are analyzed
type Options struct {

	// Exclusions contains gitignore style patterns of files/directories to skip
	Exclusions []string `yaml:"exclusions,omitempty" json:"exclusions,omitempty"`

	// Inclusions restricts analyzed files to matching patterns
	Inclusions []string `yaml:"inclusions,omitempty" json:"inclusions,omitempty"`

	// MaxFileSize is the maximum size of files to analyze in bytes
	MaxFileSize int `yaml:"maxFileSize,omitempty" json:"maxFileSize,omitempty"`
}

// Options returns a slice of Option functions based on the Options fields
func (o *Options) Options() []Option {
	var result []Option
	if o.MaxFileSize > 0 {
		result = append(result, WithMaxFileSize(o.MaxFileSize))
	}
	if o.Exclusions != nil {
		result = append(result, WithExclusionPatterns(o.Exclusions...))
	}
	if o.Inclusions != nil {
		result = append(result, WithInclusionPatterns(o.Inclusions...))
	}
	return result
}

// NewOptions creates a new Options instance with default values
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Exclusions == nil {
		options.Exclusions = getDefaultPatterns()
	}
	return options
}

// Option is a function that modifies Options
type Option func(*Options)

// WithExclusionPatterns sets exclusion patterns
func WithExclusionPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Exclusions = append(o.Exclusions, patterns...)
	}
}

// WithMaxFileSize sets the maximum analyzed file size
func WithMaxFileSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// WithGitignore adds patterns from a .gitignore file
func WithGitignore(reader io.Reader) Option {
	return func(m *Options) {
		if patterns := parseGitignore(reader); len(patterns) > 0 {
			m.Exclusions = append(m.Exclusions, patterns...)
		}
	}
}

// WithInclusionPatterns adds patterns to include
func WithInclusionPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Inclusions = append(o.Inclusions, patterns...)
	}
}

// WithDefaultExclusionPatterns adds default exclusion patterns
func WithDefaultExclusionPatterns() Option {
	return func(m *Options) {
		m.Exclusions = append(m.Exclusions, getDefaultPatterns()...)
	}
}

// getDefaultPatterns returns paths and binary formats that carry no analyzable text
func getDefaultPatterns() []string {
	return []string{
		// Directories
		".git/",
		".svn/",
		".hg/",
		"node_modules/",
		"__pycache__/",
		".cache/",

		// Files
		".DS_Store",
		"Thumbs.db",
		"*.zip",
		"*.gz",
		"*.tar",
		"*.7z",
		"*.png",
		"*.jpg",
		"*.jpeg",
		"*.gif",
		"*.webp",
		"*.ico",
		"*.mp3",
		"*.mp4",
		"*.wav",
		"*.woff",
		"*.woff2",
		"*.ttf",
		"*.exe",
		"*.dll",
		"*.so",
		"*.bin",
		"*.db",
		"*.sqlite",
		"*.swp",
		"*.tmp",
	}
}

// parseGitignore reads .gitignore-style patterns from a reader
func parseGitignore(reader io.Reader) []string {
	var patterns []string
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	return patterns
}
