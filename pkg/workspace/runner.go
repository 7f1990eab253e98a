package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/util"
)

// RunnerOptions tunes the pipeline.
type RunnerOptions struct {
	// Workers is the lint worker count; 0 picks the parser pool size.
	Workers int
	// CacheSize bounds the result cache; 0 uses the default.
	CacheSize int
	// MaxSourceFiles bounds the mapped source cache; 0 means unlimited.
	MaxSourceFiles int
}

// Report is the outcome of one workspace run.
type Report struct {
	Results []*lint.Result
	Stats   RunStats
}

// Runner drives parallel lint runs over file sets, with memory-mapped
// source reads and content-hashed result caching. Safe for concurrent
// use; watch mode and MCP requests share one Runner.
type Runner struct {
	linter  *lint.Linter
	sources *util.SourceCache
	cache   *resultCache
	logger  *slog.Logger
	workers int
}

// NewRunner builds a runner around a lint configuration.
func NewRunner(cfg lint.Config, opts RunnerOptions, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	workers := util.PoolSizeWithOverride(opts.Workers)
	cache, err := newResultCache(opts.CacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &Runner{
		linter:  lint.New(cfg, logger),
		sources: util.NewSourceCache(opts.MaxSourceFiles, logger),
		cache:   cache,
		logger:  logger,
		workers: workers,
	}, nil
}

// Close releases the parser pools and unmaps all sources.
func (r *Runner) Close() error {
	err := r.sources.Close()
	if cerr := r.linter.Close(); err == nil {
		err = cerr
	}
	return err
}

// LintOne lints a single file, serving from the result cache when the
// content is unchanged.
func (r *Runner) LintOne(path string) (*lint.Result, bool, error) {
	source, err := r.sources.Get(path)
	if err != nil {
		return nil, false, err
	}
	if res, ok := r.cache.get(path, source); ok {
		return res, true, nil
	}
	res, err := r.linter.LintSource(source, path)
	if err != nil {
		return nil, false, err
	}
	r.cache.put(path, source, res)
	return res, false, nil
}

// LintSource lints an in-memory buffer, bypassing both caches.
func (r *Runner) LintSource(source []byte, path string) (*lint.Result, error) {
	return r.linter.LintSource(source, path)
}

// Invalidate drops both cache layers for a file. Watch mode calls this
// before re-linting a changed file.
func (r *Runner) Invalidate(path string) {
	r.sources.Invalidate(path)
	r.cache.invalidate(path)
}

// CacheStats reports result cache effectiveness.
func (r *Runner) CacheStats() CacheStats {
	return r.cache.stats()
}

// Run discovers files under root and lints them in parallel.
func (r *Runner) Run(ctx context.Context, root string, opts ScanOptions, progress ProgressFunc) (*Report, error) {
	start := time.Now()
	stats := RunStats{WorkerCount: r.workers}

	discoveryStart := time.Now()
	files, err := DiscoverFiles(root, opts)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTime = time.Since(discoveryStart)

	r.logger.Info("workspace scan",
		"root", root,
		"files", len(files),
		"workers", r.workers)

	report, err := r.lintFiles(ctx, files, stats, progress)
	if err != nil {
		return nil, err
	}
	report.Stats.TotalTime = time.Since(start)
	return report, nil
}

// RunFiles lints an explicit file list in parallel.
func (r *Runner) RunFiles(ctx context.Context, files []string, progress ProgressFunc) (*Report, error) {
	start := time.Now()
	stats := RunStats{WorkerCount: r.workers, FilesDiscovered: len(files)}
	report, err := r.lintFiles(ctx, files, stats, progress)
	if err != nil {
		return nil, err
	}
	report.Stats.TotalTime = time.Since(start)
	return report, nil
}

func (r *Runner) lintFiles(ctx context.Context, files []string, stats RunStats, progress ProgressFunc) (*Report, error) {
	report := &Report{Stats: stats}
	if len(files) == 0 {
		return report, nil
	}

	lintStart := time.Now()
	total := len(files)

	pool := newWorkerPool(r.workers, r.LintOne, r.logger)
	pool.start()
	defer pool.stop()

	collectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var finished atomic.Int32

	// The collector must be running before jobs are submitted: submission
	// blocks once the queue fills, and workers block once the result
	// channel fills.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-collectCtx.Done():
				return
			case res, ok := <-pool.results:
				if !ok {
					return
				}
				report.Results = append(report.Results, res.result)
				report.Stats.FilesLinted++
				if res.cached {
					report.Stats.CacheHits++
				}
				report.Stats.Components += len(res.result.Components)
				report.Stats.Diagnostics += len(res.result.Diagnostics)
				n := finished.Add(1)
				if progress != nil {
					progress(int(n), total, res.result.File)
				}
				if int(n) >= total {
					return
				}
			case ferr, ok := <-pool.errors:
				if !ok {
					return
				}
				report.Stats.Errors = append(report.Stats.Errors, ferr)
				report.Stats.FilesFailed++
				r.logger.Warn("lint failed", "file", ferr.FilePath, "error", ferr.Err)
				n := finished.Add(1)
				if progress != nil {
					progress(int(n), total, ferr.FilePath)
				}
				if int(n) >= total {
					return
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.submit(fileJob{path: file, id: i}); err != nil {
			cancel()
			<-done
			return nil, fmt.Errorf("submit %s: %w", file, err)
		}
	}
	pool.finishSubmitting()
	<-done

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].File < report.Results[j].File
	})

	report.Stats.LintTime = time.Since(lintStart)
	r.logger.Info("lint run complete",
		"linted", report.Stats.FilesLinted,
		"failed", report.Stats.FilesFailed,
		"cache_hits", report.Stats.CacheHits,
		"diagnostics", report.Stats.Diagnostics,
		"duration_ms", report.Stats.LintTime.Milliseconds())

	return report, nil
}
