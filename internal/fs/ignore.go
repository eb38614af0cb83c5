package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory ignore file honoured when a save directory is backed up.
const IgnoreFileName = ".savehavenignore"

// defaultIgnorePatterns are always applied regardless of config or ignore files.
var defaultIgnorePatterns = []string{
	IgnoreFileName,
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
}

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against relative path; false = match against basename only
}

// IgnoreMatcher checks file paths against a set of ignore patterns.
// Patterns without '/' match against the file's basename only.
// Patterns with '/' match against the full relative path from the directory root.
// A nil *IgnoreMatcher matches nothing.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	m.add(rawPatterns)
	return m
}

// NewDefaultIgnoreMatcher returns a matcher with the built-in patterns plus rawPatterns.
func NewDefaultIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := NewIgnoreMatcher(defaultIgnorePatterns)
	m.add(rawPatterns)
	return m
}

func (m *IgnoreMatcher) add(rawPatterns []string) {
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		m.patterns = append(m.patterns, ignorePattern{
			pattern:   strings.TrimSuffix(raw, "/"),
			matchPath: strings.Contains(strings.TrimSuffix(raw, "/"), "/"),
		})
	}
}

// With returns a new matcher holding m's patterns followed by rawPatterns. m is not modified.
func (m *IgnoreMatcher) With(rawPatterns []string) *IgnoreMatcher {
	merged := &IgnoreMatcher{}
	if m != nil {
		merged.patterns = append(merged.patterns, m.patterns...)
	}
	merged.add(rawPatterns)
	return merged
}

// Match reports whether the given relative path should be ignored.
// relativePath should use filepath separators and be relative to the directory root.
// Directories can be matched too; callers skip their whole subtree.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if m == nil || len(m.patterns) == 0 || relativePath == "" {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		var matched bool
		var err error
		if p.matchPath {
			matched, err = filepath.Match(p.pattern, normalized)
		} else {
			matched, err = filepath.Match(p.pattern, basename)
		}
		if err != nil {
			// malformed pattern
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ForDirectory extends m with the patterns of the ignore file inside dir, if there is one.
func (m *IgnoreMatcher) ForDirectory(dir string) (*IgnoreMatcher, error) {
	patterns, err := ParseIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return m.With(patterns), nil
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
