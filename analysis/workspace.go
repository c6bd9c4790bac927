// Copyright © 2024 The ELPS authors

package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileResolver supplies source text for module names.
type FileResolver interface {
	// ReadSource returns the text of the named module.  An error wrapping
	// ErrNoSource reports that the module does not exist.
	ReadSource(name string) (string, error)
}

// DirResolver resolves module names as file paths relative to Root.
// Absolute names are read as given.
type DirResolver struct {
	Root string
}

var _ FileResolver = DirResolver{}

// ReadSource implements FileResolver.
func (r DirResolver) ReadSource(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) && r.Root != "" {
		path = filepath.Join(r.Root, path)
	}
	b, err := os.ReadFile(path) //nolint:gosec // language server reads workspace files
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", name, ErrNoSource)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MapResolver resolves module names from memory.
type MapResolver map[string]string

var _ FileResolver = MapResolver{}

// ReadSource implements FileResolver.
func (m MapResolver) ReadSource(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNoSource)
	}
	return text, nil
}

// IsSourceFile reports whether path has a Luau source extension.
func IsSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".luau", ".lua":
		return true
	}
	return false
}

// IsDefinitionFile reports whether path is a definition file (*.d.luau).
func IsDefinitionFile(path string) bool {
	return strings.HasSuffix(path, ".d.luau")
}

// ScanWorkspace walks a directory tree and returns the sorted paths of all
// Luau source files.  Definition files are excluded.  It skips hidden
// directories (names starting with '.') and node_modules.
//
// Unreadable directories are silently skipped.
func ScanWorkspace(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSourceFile(path) && !IsDefinitionFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// shouldSkipDir returns true for directories that should not be walked.
// It skips hidden directories (e.g. .git, .vscode) and node_modules,
// but not "." or ".." which represent the current/parent directory.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	if name == "node_modules" {
		return true
	}
	return false
}
