package scanner

import (
	"fmt"
	"path"
	"strings"
)

// Match reports whether a slash-separated relative path matches a glob
// pattern. A pattern without a separator matches the base name at any
// depth, a pattern ending in / matches everything under that directory,
// and ** spans directories. Metacharacters follow path.Match within a
// single segment.
func Match(pattern, relPath string) bool {
	if pattern == "" {
		return false
	}
	if trimmed, ok := strings.CutSuffix(pattern, "/"); ok {
		return relPath == trimmed || strings.HasPrefix(relPath, trimmed+"/")
	}
	if !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**") {
		ok, err := path.Match(pattern, path.Base(relPath))
		return err == nil && ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(relPath, "/"))
}

// matchSegments matches pattern segments against path segments, letting a
// ** segment absorb zero or more of them.
func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], segments) {
			return true
		}
		if len(segments) == 0 {
			return false
		}
		return matchSegments(pattern, segments[1:])
	}
	if len(segments) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segments[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}

// Include reports whether relPath passes the include and exclude pattern
// sets. Excludes win over includes; an empty include set admits
// everything.
func Include(relPath string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if Match(pattern, relPath) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if Match(pattern, relPath) {
			return true
		}
	}
	return false
}

// ValidatePatterns rejects syntactically malformed glob patterns so a bad
// character class fails the sync up front instead of silently matching
// nothing.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		for _, segment := range strings.Split(strings.TrimSuffix(pattern, "/"), "/") {
			if segment == "**" {
				continue
			}
			if _, err := path.Match(segment, "probe"); err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
		}
	}
	return nil
}
