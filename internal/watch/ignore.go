package watch

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultIgnore is used when Options.Ignore is nil.
var DefaultIgnore = []string{".git", ".hg", ".svn", "node_modules"}

// ignoreMatcher decides whether a path below a watched root is skipped.
//
// A pattern without a slash is matched against every segment, so ".git"
// and "*.swp" apply at any depth. A pattern with a slash is matched against
// the slash-separated path relative to the root and may use "**" for any
// number of segments, e.g. "build/**" or "**/testdata/*.golden".
type ignoreMatcher struct {
	segments []string
	paths    []string
}

func newIgnoreMatcher(patterns []string) ignoreMatcher {
	var m ignoreMatcher
	for _, p := range patterns {
		p = strings.Trim(filepath.ToSlash(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			m.paths = append(m.paths, p)
		} else {
			m.segments = append(m.segments, p)
		}
	}
	return m
}

// match reports whether rel, a slash-separated relative path, is ignored.
func (m ignoreMatcher) match(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, pat := range m.segments {
		for _, seg := range parts {
			if matchSegment(seg, pat) {
				return true
			}
		}
	}
	for _, pat := range m.paths {
		if matchParts(parts, strings.Split(pat, "/")) {
			return true
		}
	}
	return false
}

// matchParts recursively matches path segments against pattern segments.
func matchParts(parts, pattern []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}

	head, rest := pattern[0], pattern[1:]
	if head == "**" {
		if len(rest) == 0 {
			return true
		}
		for i := 0; i <= len(parts); i++ {
			if matchParts(parts[i:], rest) {
				return true
			}
		}
		return false
	}

	if len(parts) == 0 || !matchSegment(parts[0], head) {
		return false
	}
	return matchParts(parts[1:], rest)
}

// matchSegment matches one segment with path.Match syntax. Malformed
// patterns only match literally.
func matchSegment(segment, pattern string) bool {
	if pattern == segment {
		return true
	}
	ok, err := path.Match(pattern, segment)
	return err == nil && ok
}
