package matching

import (
	"path"
	"strings"

	"github.com/viant/afs/url"
	"github.com/viant/langprobe/matching/option"
)

// Manager decides which corpus files are analyzed using gitignore style rules
type Manager struct {
	options    *option.Options
	exclusions []*rule
	inclusions []*rule
}

// New creates a new manager with the given options
func New(opts ...option.Option) *Manager {
	options := option.NewOptions(opts...)
	return &Manager{
		options:    options,
		exclusions: compile(options.Exclusions),
		inclusions: compile(options.Inclusions),
	}
}

// IsExcluded checks if a file should be skipped based on size, inclusions and exclusions
func (m *Manager) IsExcluded(location string, size int) bool {
	if m.options.MaxFileSize > 0 && size > m.options.MaxFileSize {
		return true
	}
	segments := split(location)
	if len(m.inclusions) > 0 && !matchAny(m.inclusions, segments, false) {
		return true
	}
	return m.excluded(segments, false)
}

// IsExcludedDir checks if a directory should not be descended into
func (m *Manager) IsExcludedDir(location string) bool {
	return m.excluded(split(location), true)
}

// excluded applies exclusions in order, the last matching rule wins
func (m *Manager) excluded(segments []string, isDir bool) bool {
	result := false
	for _, r := range m.exclusions {
		if r.matches(segments, isDir) {
			result = !r.negate
		}
	}
	return result
}

func matchAny(rules []*rule, segments []string, isDir bool) bool {
	for _, r := range rules {
		if !r.negate && r.matches(segments, isDir) {
			return true
		}
	}
	return false
}

type rule struct {
	segments []string
	negate   bool
	dirOnly  bool
}

func compile(patterns []string) []*rule {
	var result []*rule
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		r := &rule{}
		if strings.HasPrefix(pattern, "!") {
			r.negate = true
			pattern = pattern[1:]
		}
		if strings.HasSuffix(pattern, "/") {
			r.dirOnly = true
			pattern = strings.TrimRight(pattern, "/")
		}
		// a slash anchors the pattern at the root unless it is a **/ or /** directory pattern
		anchored := strings.HasPrefix(pattern, "/") ||
			(strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") && !strings.HasSuffix(pattern, "/**"))
		pattern = strings.TrimLeft(pattern, "/")
		if pattern == "" {
			continue
		}
		if !anchored && !strings.HasPrefix(pattern, "**/") {
			pattern = "**/" + pattern
		}
		r.segments = strings.Split(pattern, "/")
		result = append(result, r)
	}
	return result
}

// matches reports whether the rule matches the path or one of its parent directories
func (r *rule) matches(segments []string, isDir bool) bool {
	for k := 1; k <= len(segments); k++ {
		if r.dirOnly && k == len(segments) && !isDir {
			break
		}
		if matchSegments(r.segments, segments[:k]) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(segments); i++ {
			if matchSegments(pattern[1:], segments[i:]) {
				return true
			}
		}
		return false
	}
	if len(segments) == 0 {
		return false
	}
	if matched, _ := path.Match(pattern[0], segments[0]); !matched {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}

// split normalizes URLs and OS paths into slash separated segments
func split(location string) []string {
	if strings.Contains(location, "://") {
		location = url.Path(location)
	}
	location = strings.ReplaceAll(location, `\`, "/")
	var result []string
	for _, segment := range strings.Split(location, "/") {
		if segment != "" && segment != "." {
			result = append(result, segment)
		}
	}
	return result
}
