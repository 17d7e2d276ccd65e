// Package allowlist decides which wrapped commands bypass redaction.
package allowlist

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// List is a validated set of command patterns. Patterns use path.Match
// syntax. A pattern without a slash matches the command's basename; a
// pattern with one matches the resolved full path.
type List struct {
	patterns []pattern
}

type pattern struct {
	glob     string
	fullPath bool
}

// New validates entries and returns the compiled list. Blank entries are skipped.
func New(entries []string) (*List, error) {
	l := &List{}
	for i, entry := range entries {
		glob := strings.TrimSpace(entry)
		if glob == "" {
			continue
		}
		if _, err := path.Match(glob, ""); err != nil {
			return nil, fmt.Errorf("allowlist entry %d %q: %w", i, glob, err)
		}
		l.patterns = append(l.patterns, pattern{glob: glob, fullPath: strings.Contains(glob, "/")})
	}
	return l, nil
}

// Len returns the number of usable patterns.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.patterns)
}

// Match reports whether the command should run without redaction.
// resolvedPath may be empty when the command was not found on PATH.
func (l *List) Match(argv0, resolvedPath string) bool {
	if l.Len() == 0 {
		return false
	}
	argv0 = strings.TrimSpace(argv0)
	resolvedPath = strings.TrimSpace(resolvedPath)
	base := commandBase(argv0, resolvedPath)
	full := commandFull(argv0, resolvedPath)

	for _, p := range l.patterns {
		target := base
		if p.fullPath {
			target = full
		}
		if target == "" {
			continue
		}
		// Patterns were validated in New.
		if ok, _ := path.Match(p.glob, target); ok {
			return true
		}
	}
	return false
}

func commandBase(argv0 string, resolvedPath string) string {
	if resolvedPath != "" {
		return filepath.Base(resolvedPath)
	}
	if argv0 == "" {
		return ""
	}
	return filepath.Base(argv0)
}

func commandFull(argv0 string, resolvedPath string) string {
	if resolvedPath != "" {
		return resolvedPath
	}
	return argv0
}
