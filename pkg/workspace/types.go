// Package workspace runs the linter over whole directory trees: glob
// based file discovery, a parallel lint pipeline with result caching,
// and a watch mode that re-lints files as they change.
package workspace

import "time"

// ScanOptions controls file discovery.
type ScanOptions struct {
	// Include patterns, doublestar syntax, relative to the scan root.
	Include []string
	// Exclude patterns; a matching directory is skipped entirely.
	Exclude []string
}

// DefaultScanOptions matches the supported source extensions and skips
// the usual dependency and build output trees.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Include: []string{"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx"},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/dist/**",
			"**/build/**",
			"**/*.d.ts",
		},
	}
}

// FileError records a per-file failure; one bad file never aborts a run.
type FileError struct {
	FilePath string
	Err      error
}

// RunStats describes one workspace run.
type RunStats struct {
	FilesDiscovered int
	FilesLinted     int
	FilesFailed     int
	CacheHits       int
	Components      int
	Diagnostics     int
	WorkerCount     int

	DiscoveryTime time.Duration
	LintTime      time.Duration
	TotalTime     time.Duration

	Errors []FileError
}

// ProgressFunc receives per-file progress during a run.
type ProgressFunc func(done, total int, file string)

// WatchOptions controls watch mode.
type WatchOptions struct {
	// DebounceMs groups rapid successive events for the same file.
	DebounceMs int
	// Exclude patterns checked against event paths.
	Exclude []string
}

// DefaultWatchOptions uses a 200ms debounce window.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		Exclude:    []string{"**/node_modules/**", "**/.git/**"},
	}
}
