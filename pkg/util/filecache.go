package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// SourceCache provides read access to source files using memory-mapped
// files, with a graceful fallback to os.ReadFile when mmap fails (empty
// files, exotic filesystems). Files stay mapped until Close.
//
// Thread-safe: reads take a shared lock, first-time loads an exclusive one.
type SourceCache struct {
	mu       sync.RWMutex
	files    map[string]*mappedSource
	maxFiles int
	logger   *slog.Logger

	hits        int64
	misses      int64
	mmapFailed  int64
	bytesMapped int64
}

type mappedSource struct {
	data   mmap.MMap
	bytes  []byte // fallback copy when mmap failed
	mapped bool
}

func (m *mappedSource) contents() []byte {
	if m.mapped {
		return m.data
	}
	return m.bytes
}

// SourceCacheStats reports cache behavior for observability.
type SourceCacheStats struct {
	Files       int
	Hits        int64
	Misses      int64
	MmapFailed  int64
	BytesMapped int64
}

// NewSourceCache creates a cache holding at most maxFiles mapped files.
// maxFiles <= 0 means unlimited.
func NewSourceCache(maxFiles int, logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{
		files:    make(map[string]*mappedSource),
		maxFiles: maxFiles,
		logger:   logger,
	}
}

// Get returns the file's contents, mapping it on first access.
// The returned slice is valid until Close; callers must not mutate it.
func (sc *SourceCache) Get(path string) ([]byte, error) {
	sc.mu.RLock()
	ms, ok := sc.files[path]
	if ok {
		sc.mu.RUnlock()
		sc.mu.Lock()
		sc.hits++
		sc.mu.Unlock()
		return ms.contents(), nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Another goroutine may have loaded it while we waited.
	if ms, ok := sc.files[path]; ok {
		sc.hits++
		return ms.contents(), nil
	}

	if sc.maxFiles > 0 && len(sc.files) >= sc.maxFiles {
		return nil, fmt.Errorf("source cache full (%d files)", sc.maxFiles)
	}

	ms, err := sc.load(path)
	if err != nil {
		return nil, err
	}
	sc.files[path] = ms
	sc.misses++
	return ms.contents(), nil
}

// load maps the file, falling back to a plain read.
func (sc *SourceCache) load(path string) (*mappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// mmap of a zero-length file fails on some platforms.
	if info.Size() > 0 {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err == nil {
			sc.bytesMapped += info.Size()
			return &mappedSource{data: m, mapped: true}, nil
		}
		sc.mmapFailed++
		sc.logger.Debug("mmap failed, falling back to read", "path", path, "error", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &mappedSource{bytes: data}, nil
}

// Size returns the number of cached files.
func (sc *SourceCache) Size() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.files)
}

// Stats returns a snapshot of cache metrics.
func (sc *SourceCache) Stats() SourceCacheStats {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return SourceCacheStats{
		Files:       len(sc.files),
		Hits:        sc.hits,
		Misses:      sc.misses,
		MmapFailed:  sc.mmapFailed,
		BytesMapped: sc.bytesMapped,
	}
}

// Invalidate drops a single file from the cache, unmapping it.
// Used by watch mode when a file changes on disk.
func (sc *SourceCache) Invalidate(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if ms, ok := sc.files[path]; ok {
		if ms.mapped {
			if err := ms.data.Unmap(); err != nil {
				sc.logger.Warn("unmap failed", "path", path, "error", err)
			}
		}
		delete(sc.files, path)
	}
}

// Close unmaps all files. The cache is unusable afterwards.
func (sc *SourceCache) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var firstErr error
	for path, ms := range sc.files {
		if ms.mapped {
			if err := ms.data.Unmap(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("unmap %s: %w", path, err)
			}
		}
	}
	sc.files = make(map[string]*mappedSource)
	return firstErr
}
