// Package relpath turns paths produced by enumerating a root back into
// root-relative keys.
package relpath

// NotUnderRootError reports a path that does not start with the root it
// was paired with. Seeing one means the caller mixed up roots.
type NotUnderRootError struct {
	Root string
	Path string
}

func (e *NotUnderRootError) Error() string {
	return "path '" + e.Path + "' is not under root '" + e.Root + "'"
}

// Relativize strips root from the front of fullPath and returns what is
// left. The match is a plain byte prefix: separators are not normalized and
// "." or ".." segments are not resolved.
func Relativize(root, fullPath string) (string, error) {
	if len(root) > len(fullPath) || fullPath[:len(root)] != root {
		return "", &NotUnderRootError{Root: root, Path: fullPath}
	}
	return fullPath[len(root):], nil
}

// MustRelativize is like Relativize but panics when fullPath is not under root
func MustRelativize(root, fullPath string) string {
	rel, err := Relativize(root, fullPath)
	if err != nil {
		panic(err)
	}
	return rel
}

// Display returns the key of fullPath when relative is set, otherwise the
// path itself
func Display(root, fullPath string, relative bool) (string, error) {
	if !relative {
		return fullPath, nil
	}
	return Relativize(root, fullPath)
}
