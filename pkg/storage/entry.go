package storage

import (
	"io/fs"
)

type entryKind int

const (
	entryOther entryKind = iota
	entryFile
	entryDir
)

// resolveKind decides what a directory entry is from the type its listing
// reported. Listings that cannot tell (ModeIrregular) are resolved with stat.
// stat must not follow symlinks.
func resolveKind(reported fs.FileMode, path string, stat func(string) (fs.FileInfo, error)) (entryKind, error) {
	typ := reported.Type()
	if typ&fs.ModeIrregular != 0 {
		info, err := stat(path)
		if err != nil {
			return entryOther, newIOError("stat", path, err)
		}
		typ = info.Mode().Type()
	}

	switch {
	case typ.IsDir():
		return entryDir, nil
	case typ.IsRegular():
		return entryFile, nil
	default:
		// symlinks, devices, sockets and pipes are not compared
		return entryOther, nil
	}
}

// isPseudoEntry reports the self and parent entries some listings include
func isPseudoEntry(name string) bool {
	return name == "." || name == ".."
}
