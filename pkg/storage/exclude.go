package storage

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// excluded reports whether a relative key matches any pattern.
// Supported forms:
//   - basename globs: *.tmp, *.log
//   - directory patterns: .git/, node_modules/
//   - path globs: build/*, docs/*.md
//   - any-depth globs: **/testdata, **/*.bak
//   - alternatives and classes: *.{tmp,bak}, [!.]*
func excluded(key string, isDir bool, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	path := strings.TrimPrefix(filepath.ToSlash(key), "/")
	if path == "" {
		return false
	}
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)

		// "dir/" only matches directories, and everything below them
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if (isDir && (path == dir || strings.HasSuffix(path, "/"+dir))) ||
				strings.HasPrefix(path, dir+"/") ||
				strings.Contains(path, "/"+dir+"/") {
				return true
			}
			continue
		}

		if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
			if globMatch(suffix, base) || globMatch(suffix, path) || anySuffixMatches(path, suffix) {
				return true
			}
			continue
		}

		if strings.Contains(pattern, "/") {
			if globMatch(pattern, path) {
				return true
			}
			continue
		}

		if globMatch(pattern, base) {
			return true
		}
	}

	return false
}

// anySuffixMatches tries pattern against every trailing run of path components
func anySuffixMatches(path, pattern string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' && globMatch(pattern, path[i+1:]) {
			return true
		}
	}
	return false
}

// compiled patterns, shared by concurrent enumerations
var globCache sync.Map

// globMatch matches name against pattern; "*" and "?" never cross "/".
// A malformed pattern matches nothing.
func globMatch(pattern, name string) bool {
	if cached, ok := globCache.Load(pattern); ok {
		g, _ := cached.(glob.Glob)
		return g != nil && g.Match(name)
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		globCache.Store(pattern, glob.Glob(nil))
		return false
	}
	globCache.Store(pattern, g)
	return g.Match(name)
}
