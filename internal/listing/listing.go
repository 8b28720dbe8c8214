// Package listing reads single directory levels into entries shared by the
// tree renderer and the concurrent scanner.
package listing

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Kind classifies a directory entry.
type Kind int

const (
	// File is a regular file.
	File Kind = iota
	// Dir is a directory.
	Dir
	// Other is anything else (symlink, socket, device, pipe).
	Other
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "directory"
	default:
		return "other"
	}
}

// Entry is one object found while listing a directory.
type Entry struct {
	// Name is the base name as returned by the directory read.
	Name string
	// Path is the directory path joined with Name.
	Path string
	// Kind classifies the entry. Symlinks report Other unless they are followed
	// and resolve to a directory.
	Kind Kind
	// Link is set for a followed symlink that resolves to a directory.
	Link bool
	// Size is the byte length for non-directories.
	Size uint64
	// Err is set if the entry's metadata could not be read.
	Err error
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == Dir
}

// Order selects the order in which entries of one directory are returned.
type Order string

const (
	// Native keeps the order in which the operating system yields entries.
	Native Order = "native"
	// Name sorts entries by name.
	Name Order = "name"
)

// Orders lists the accepted orders.
//
//nolint:gochecknoglobals // Config constant
var Orders = []Order{Native, Name}

// ParseOrder validates s as an Order.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToLower(s))
	if o == "" {
		return Native, nil
	}

	if !slices.Contains(Orders, o) {
		return "", fmt.Errorf("invalid order %q: must be one of %v", s, Orders)
	}

	return o, nil
}

// List returns the immediate entries of dir.
//
// The directory is read with a single unsorted read so that Native reflects
// what the filesystem returns. Metadata is fetched for non-directories only,
// and a failure to do so is carried on the entry instead of failing the listing.
//
// With follow set, symlinks are stat'ed and those that resolve to a directory
// become Dir entries. Symlinks to anything else keep their own size.
func List(dir string, order Order, follow bool) ([]Entry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dirents, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirents))

	//nolint:varnamelen // d is standard for DirEntry
	for _, d := range dirents {
		entries = append(entries, newEntry(dir, d, follow))
	}

	if order == Name {
		slices.SortFunc(entries, func(a, b Entry) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	return entries, nil
}

//nolint:varnamelen // d is standard for DirEntry
func newEntry(dir string, d fs.DirEntry, follow bool) Entry {
	entry := Entry{
		Name: d.Name(),
		Path: filepath.Join(dir, d.Name()),
		Kind: kindOf(d.Type()),
	}

	if entry.Kind == Dir {
		return entry
	}

	if follow && d.Type()&fs.ModeSymlink != 0 {
		// Dangling links fall through and are reported with their own size.
		if target, err := os.Stat(entry.Path); err == nil && target.IsDir() {
			entry.Kind = Dir
			entry.Link = true

			return entry
		}
	}

	info, err := d.Info()
	if err != nil {
		entry.Err = err

		return entry
	}

	entry.Size = uint64(info.Size()) //nolint:gosec // Sizes reported by lstat are never negative

	return entry
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return Dir
	case mode.IsRegular():
		return File
	default:
		return Other
	}
}
