package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// GraphExtensions lists the file extensions accepted as flow graphs.
var GraphExtensions = []string{".json", ".fbp", ".yaml", ".yml"}

// ValidateGraphPath checks that path names a flow graph file.
// Only the extension is inspected; existence is checked by the loader so
// that a missing file is reported as FILE_NOT_FOUND.
func ValidateGraphPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "graph path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "graph path contains invalid characters")
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(GraphExtensions, ext) {
		return New(ErrCodeInvalidFormat, "%s is not a flow graph file (expected one of %s)",
			path, strings.Join(GraphExtensions, ", "))
	}
	return nil
}

// ValidateComponentName rejects component names that cannot appear in a
// manifest: empty names, control characters and path traversal.
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "component name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidManifest, "component name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "component name contains invalid control characters")
		}
	}
	if strings.Contains(name, "..") || strings.Contains(name, "\\") {
		return New(ErrCodeInvalidManifest, "component name contains invalid characters: %q", name)
	}
	return nil
}
