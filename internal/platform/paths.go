package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath cleans a root given on the command line and makes it
// absolute. UNC prefixes are preserved on Windows.
func NormalizePath(path string) (string, error) {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if IsUNCPath(path) && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\/`)
	}

	if !IsAbsolute(normalized) {
		abs, err := filepath.Abs(normalized)
		if err != nil {
			return "", &PathError{Path: path, Message: err.Error()}
		}
		normalized = abs
	}

	return normalized, nil
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(path string) bool {
	if IsUNCPath(path) {
		return true
	}
	return filepath.IsAbs(path)
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
