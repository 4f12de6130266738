package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScanDir lists the supported source documents directly inside dir, sorted
// by path so downstream ID assignment is reproducible.
func (r *Registry) ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read manuals dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if r.Supports(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
