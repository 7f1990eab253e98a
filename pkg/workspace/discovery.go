package workspace

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverFiles walks the tree under root and returns every file
// matching the include patterns and not excluded. Walk errors on
// individual entries are skipped; the walk continues.
func DiscoverFiles(root string, opts ScanOptions) ([]string, error) {
	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range opts.Exclude {
			if matched, _ := doublestar.PathMatch(pattern, rel); matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		for _, pattern := range opts.Include {
			if matched, _ := doublestar.PathMatch(pattern, rel); matched {
				files = append(files, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// matchesAny reports whether rel matches any of the patterns.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.PathMatch(pattern, filepath.ToSlash(rel)); matched {
			return true
		}
	}
	return false
}
