package models

import "fmt"

// ListKind names one of the three difference lists
type ListKind string

const (
	// ListRemoved holds files present only under the first root
	ListRemoved ListKind = "removed"
	// ListModified holds files present under both roots with different content
	ListModified ListKind = "modified"
	// ListAdded holds files present only under the second root
	ListAdded ListKind = "added"
)

// ListKinds is the order in which lists are rendered
var ListKinds = []ListKind{ListRemoved, ListModified, ListAdded}

// Classification is the outcome of comparing two trees.
// Removed and Modified hold paths under Root1, Added holds paths under Root2.
// A relative key appears in at most one list; identical files appear in none
// and are only counted in Unchanged.
type Classification struct {
	Root1 string
	Root2 string

	Removed  FileSet
	Modified FileSet
	Added    FileSet

	Unchanged int
}

// List returns the file set for kind
func (c *Classification) List(kind ListKind) FileSet {
	switch kind {
	case ListRemoved:
		return c.Removed
	case ListModified:
		return c.Modified
	case ListAdded:
		return c.Added
	default:
		return nil
	}
}

// RootOf returns the root the paths of kind live under
func (c *Classification) RootOf(kind ListKind) string {
	if kind == ListAdded {
		return c.Root2
	}
	return c.Root1
}

// Keys returns the relative keys of the given list
func (c *Classification) Keys(kind ListKind) ([]string, error) {
	keys, err := c.List(kind).Relative(c.RootOf(kind))
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", kind, err)
	}
	return keys, nil
}

// HasDifferences reports whether any list is non-empty
func (c *Classification) HasDifferences() bool {
	return len(c.Removed) > 0 || len(c.Modified) > 0 || len(c.Added) > 0
}
