package models

import (
	"sort"

	"github.com/sdejongh/treediff/pkg/relpath"
)

// FileSet holds the paths of regular files found under one root.
// Every path starts with the root it was enumerated from.
type FileSet []string

// Len returns the number of paths in the set
func (s FileSet) Len() int {
	return len(s)
}

// Sorted returns a sorted copy, leaving the receiver untouched
func (s FileSet) Sorted() FileSet {
	out := make(FileSet, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

// Relative maps every path to its key under root. It fails on the first
// path that is not under root.
func (s FileSet) Relative(root string) ([]string, error) {
	keys := make([]string, 0, len(s))
	for _, p := range s {
		key, err := relpath.Relativize(root, p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
