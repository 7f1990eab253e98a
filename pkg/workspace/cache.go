package workspace

import (
	"crypto/sha256"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/proplint/pkg/lint"
)

// resultCache memoizes lint results per file, keyed by path and guarded
// by a content hash so stale entries are never served after an edit.
// Bounded by an LRU so long watch sessions do not grow without limit.
type resultCache struct {
	cache  *lru.Cache[string, cachedResult]
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type cachedResult struct {
	hash   [sha256.Size]byte
	result *lint.Result
}

func newResultCache(size int, logger *slog.Logger) (*resultCache, error) {
	if size <= 0 {
		size = 1000
	}
	cache, err := lru.NewWithEvict(size, func(key string, _ cachedResult) {
		logger.Debug("evicting cached result", "path", key)
	})
	if err != nil {
		return nil, err
	}
	return &resultCache{cache: cache, logger: logger}, nil
}

// get returns the cached result for path if the source is unchanged.
func (rc *resultCache) get(path string, source []byte) (*lint.Result, bool) {
	entry, ok := rc.cache.Get(path)
	if !ok || entry.hash != sha256.Sum256(source) {
		rc.misses.Add(1)
		return nil, false
	}
	rc.hits.Add(1)
	return entry.result, true
}

func (rc *resultCache) put(path string, source []byte, res *lint.Result) {
	rc.cache.Add(path, cachedResult{hash: sha256.Sum256(source), result: res})
}

func (rc *resultCache) invalidate(path string) {
	rc.cache.Remove(path)
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func (rc *resultCache) stats() CacheStats {
	return CacheStats{
		Entries: rc.cache.Len(),
		Hits:    rc.hits.Load(),
		Misses:  rc.misses.Load(),
	}
}
