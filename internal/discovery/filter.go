package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the test files whose name matches pattern.
// Supports patterns like "test_snap*.py" or "*rebalance*", and a component
// qualifier: "glusterd/*" matches every test directly under a glusterd dir.
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	component := ""
	if i := strings.LastIndex(pattern, "/"); i >= 0 {
		component, pattern = pattern[:i], pattern[i+1:]
	}

	var filtered []string
	for _, test := range tests {
		if component != "" && !matchPart(component, filepath.Base(filepath.Dir(test))) {
			continue
		}
		if pattern == "" || matchPart(pattern, filepath.Base(test)) {
			filtered = append(filtered, test)
		}
	}

	return filtered
}

// matchPart matches one path element against a wildcard pattern, falling
// back to substring matching the way users usually mean "*snap*".
func matchPart(pattern, name string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Every non-empty piece between wildcards must appear, in order
	rest := name
	found := false
	for _, part := range strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' }) {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		found = true
	}
	return found
}
