package listing

import (
	"io/fs"
	"os"
	"slices"
)

// Chain is the sequence of directories from the root of a walk down to the
// directory being listed. It is only needed when symlinks are followed.
type Chain []fs.FileInfo

// Descend returns c extended by dir. It reports false if dir resolves to a
// directory already on c, in which case descending would never terminate.
func (c Chain) Descend(dir string) (Chain, bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, false, err
	}

	for _, ancestor := range c {
		if os.SameFile(ancestor, info) {
			return c, false, nil
		}
	}

	return append(slices.Clip(c), info), true, nil
}
