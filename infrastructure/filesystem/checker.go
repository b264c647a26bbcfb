package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"videoxt/domain/extraction"
)

// Checker implements extraction.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if path is an existing directory
func (c *Checker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Files returns the regular files an extraction produced at path: the file
// itself, or the files directly inside it when path is a frames directory
func (c *Checker) Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Ensure Checker implements extraction.FileChecker
var _ extraction.FileChecker = (*Checker)(nil)
