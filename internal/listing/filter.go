package listing

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Excluder matches paths against exclusion regexes.
// The zero value excludes nothing.
type Excluder struct {
	patterns []*regexp.Regexp
}

// NewExcluder compiles the given patterns.
func NewExcluder(patterns []string) (Excluder, error) {
	excluder := Excluder{patterns: make([]*regexp.Regexp, 0, len(patterns))}

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Excluder{}, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excluder.patterns = append(excluder.patterns, re)
	}

	return excluder, nil
}

// Match returns the first pattern matching path, or nil.
// Paths are matched in slash form; directories get a trailing slash so that
// patterns like `.*\.git/.*` also catch the directory itself.
func (e Excluder) Match(path string, isDir bool) *regexp.Regexp {
	if len(e.patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)
	if isDir {
		fPath += "/"
	}

	for _, re := range e.patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// Filter returns entries not matched by any pattern, preserving order.
// excluded is called for every dropped entry if non-nil.
func (e Excluder) Filter(entries []Entry, excluded func(Entry, *regexp.Regexp)) []Entry {
	if len(e.patterns) == 0 {
		return entries
	}

	kept := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		if re := e.Match(entry.Path, entry.IsDir()); re != nil {
			if excluded != nil {
				excluded(entry, re)
			}

			continue
		}

		kept = append(kept, entry)
	}

	return kept
}
