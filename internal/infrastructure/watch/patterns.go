package watch

import (
	"path/filepath"
	"strings"
)

// DocumentPatterns are the file types the document library accepts.
var DocumentPatterns = []string{"*.pdf", "*.docx", "*.doc", "*.xlsx", "*.csv", "*.txt", "*.md"}

// PatternFilter decides which dropped files are picked up.
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter creates a filter. Patterns match the base name or the
// full path, case-insensitively.
func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: lower(include),
		Exclude: lower(exclude),
	}
}

// ParsePatterns splits a comma-separated pattern list.
func ParsePatterns(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether path passes the filter. Excludes win over
// includes; an empty include list accepts everything not excluded.
func (f *PatternFilter) Matches(path string) bool {
	path = strings.ToLower(path)
	if anyMatch(f.Exclude, path) {
		return false
	}
	return len(f.Include) == 0 || anyMatch(f.Include, path)
}

func anyMatch(patterns []string, path string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func lower(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(p)
	}
	return out
}
