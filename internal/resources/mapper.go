// Package resources copies Doxygen html assets next to the Sphinx output
// and scopes Doxygen stylesheets so they only apply inside the embedded
// content.
package resources

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DirectoryMapper maps a path under the Sphinx source root to the same
// relative path under the Sphinx output root.
type DirectoryMapper struct {
	Source string
	Output string
}

// NewDirectoryMapper resolves both roots to absolute paths.
func NewDirectoryMapper(source, output string) (DirectoryMapper, error) {
	src, err := filepath.Abs(source)
	if err != nil {
		return DirectoryMapper{}, fmt.Errorf("resolve sphinx source: %w", err)
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return DirectoryMapper{}, fmt.Errorf("resolve sphinx output: %w", err)
	}
	return DirectoryMapper{Source: src, Output: out}, nil
}

// Map returns the output location of path. Paths outside the source root
// cannot be mapped.
func (m DirectoryMapper) Map(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.Source, abs)
	if err != nil {
		return "", fmt.Errorf("map %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("map %s: not inside sphinx source %s", path, m.Source)
	}
	return filepath.Join(m.Output, rel), nil
}
