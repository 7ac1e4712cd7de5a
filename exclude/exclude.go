// Package exclude decides whether a host name is covered by the configured
// domain-exclusion patterns. Excluded hosts are never ingested and never
// enriched.
//
// Patterns are case-insensitive globs (`*` matches any run of characters,
// `?` exactly one). A bare pattern also covers its subdomains:
// "example.com" excludes "sub.example.com". Patterns containing digits get
// an extra octet-aware comparison so "192.168.*.*" covers the whole /16
// without catching unrelated hosts of a different segment count.
package exclude

import (
	"path"
	"strings"
)

// Filter holds the compiled exclusion pattern list. It is immutable after
// construction; build one at startup and share it across components.
type Filter struct {
	patterns []string
}

// New creates a Filter from the configured pattern list. Patterns are
// lowercased once here; empty patterns are dropped.
func New(patterns []string) *Filter {
	f := &Filter{patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			f.patterns = append(f.patterns, p)
		}
	}
	return f
}

// Len returns the number of active patterns.
func (f *Filter) Len() int {
	return len(f.patterns)
}

// IsExcluded reports whether host matches any exclusion pattern. An empty
// host is excluded: a URL whose host cannot be determined is not worth
// ingesting and must not be fetched.
func (f *Filter) IsExcluded(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return true
	}

	for _, pattern := range f.patterns {
		if strings.ContainsAny(pattern, "0123456789") && matchSegments(host, pattern) {
			return true
		}
		if globMatch(pattern, host) {
			return true
		}
		// A plain domain pattern also covers every subdomain.
		if globMatch("*."+pattern, host) {
			return true
		}
	}
	return false
}

// globMatch wraps path.Match; a malformed pattern simply never matches.
func globMatch(pattern, host string) bool {
	ok, err := path.Match(pattern, host)
	return err == nil && ok
}

// matchSegments compares host and pattern dot-segment by dot-segment:
// the segment counts must be equal, a "*" segment matches anything, every
// other segment must match literally. This keeps "192.168.*.*" from
// matching hosts with a different number of octets.
func matchSegments(host, pattern string) bool {
	if !strings.ContainsAny(host, "0123456789") {
		return false
	}
	hostParts := strings.Split(host, ".")
	patternParts := strings.Split(pattern, ".")
	if len(hostParts) != len(patternParts) {
		return false
	}
	for i, pp := range patternParts {
		if pp == "*" {
			continue
		}
		if hostParts[i] != pp {
			return false
		}
	}
	return true
}
