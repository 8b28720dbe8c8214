// Package tree renders a directory hierarchy as connector-decorated text.
package tree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/idelchi/dirtree/internal/debug"
	"github.com/idelchi/dirtree/internal/listing"
)

// Connector glyphs.
const (
	Branch = "├── "
	Last   = "└── "
	Pipe   = "│   "
	Blank  = "    "
)

// Options configures rendering.
type Options struct {
	// Order is the order entries of one directory are printed in.
	Order listing.Order
	// OnError decides what happens when a subdirectory cannot be listed.
	OnError listing.ErrorPolicy
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Follow descends into symlinks that resolve to directories.
	Follow bool
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// Report summarizes a render.
type Report struct {
	// Directories is the number of directories printed below the root.
	Directories int `json:"directories" yaml:"directories"`
	// Files is the number of non-directory entries printed.
	Files int `json:"files" yaml:"files"`
	// Skipped lists subdirectories that could not be listed.
	Skipped []listing.Skipped `json:"skipped" yaml:"skipped"`
}

//nolint:gochecknoglobals // Replaced in tests
var listDir = listing.List

type renderer struct {
	w        *bufio.Writer
	order    listing.Order
	policy   listing.ErrorPolicy
	follow   bool
	excluder listing.Excluder
	log      debug.Logger
	report   Report
}

// Render writes the tree rooted at path to w, one line per entry.
//
// A path that is not a directory is printed as given. Failing to list the root
// is always an error; failures below it follow opt.OnError.
//
// With opt.Follow, a symlink to a directory that is already on the path from
// the root is printed but not expanded.
func Render(w io.Writer, path string, opt Options) (*Report, error) {
	order, err := listing.ParseOrder(string(opt.Order))
	if err != nil {
		return nil, err
	}

	policy, err := listing.ParseErrorPolicy(string(opt.OnError))
	if err != nil {
		return nil, err
	}

	excluder, err := listing.NewExcluder(opt.Excludes)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", path, err)
	}

	r := &renderer{
		w:        bufio.NewWriter(w),
		order:    order,
		policy:   policy,
		follow:   opt.Follow,
		excluder: excluder,
		log:      debug.New(opt.Debug),
	}

	if !info.IsDir() {
		r.report.Files++

		if _, err := fmt.Fprintln(r.w, path); err != nil {
			return nil, fmt.Errorf("writing tree: %w", err)
		}

		return &r.report, r.flush()
	}

	chain, _, err := r.descend(nil, path)
	if err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", path, err)
	}

	entries, err := r.list(path)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", path, err)
	}

	if err := r.render(entries, "", chain); err != nil {
		// Emit what was rendered so far before failing.
		_ = r.w.Flush()

		return nil, err
	}

	return &r.report, r.flush()
}

func (r *renderer) list(dir string) ([]listing.Entry, error) {
	entries, err := listDir(dir, r.order, r.follow)
	if err != nil {
		return nil, err
	}

	return r.excluder.Filter(entries, r.logExcluded), nil
}

func (r *renderer) logExcluded(entry listing.Entry, re *regexp.Regexp) {
	r.log.Printf("excluding %s (matched regex: %s)", filepath.ToSlash(entry.Path), re.String())
}

// render prints one directory level and recurses into subdirectories.
func (r *renderer) render(entries []listing.Entry, prefix string, chain listing.Chain) error {
	for i, entry := range entries {
		last := i == len(entries)-1

		connector, childPrefix := Branch, prefix+Pipe
		if last {
			connector, childPrefix = Last, prefix+Blank
		}

		if _, err := fmt.Fprintf(r.w, "%s%s%s\n", prefix, connector, entry.Name); err != nil {
			return fmt.Errorf("writing tree: %w", err)
		}

		if !entry.IsDir() {
			r.report.Files++

			continue
		}

		r.report.Directories++

		next, ok, err := r.descend(chain, entry.Path)
		if err == nil && !ok {
			r.log.Printf("not descending into %s: already on the current path", entry.Path)

			continue
		}

		var children []listing.Entry
		if err == nil {
			children, err = r.list(entry.Path)
		}

		if err != nil {
			if r.policy == listing.Fail {
				return fmt.Errorf("listing %q: %w", entry.Path, err)
			}

			r.log.Printf("error listing directory %s: %v", entry.Path, err)
			r.report.Skipped = append(r.report.Skipped, listing.Skipped{Path: entry.Path, Error: err.Error()})

			continue
		}

		if err := r.render(children, childPrefix, next); err != nil {
			return err
		}
	}

	return nil
}

// descend extends chain by dir when following symlinks.
func (r *renderer) descend(chain listing.Chain, dir string) (listing.Chain, bool, error) {
	if !r.follow {
		return chain, true, nil
	}

	return chain.Descend(dir)
}

func (r *renderer) flush() error {
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("writing tree: %w", err)
	}

	return nil
}
