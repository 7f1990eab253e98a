package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/proplint/pkg/lint"
)

// fileJob is one file queued for linting.
type fileJob struct {
	path string
	id   int
}

// fileResult is one finished lint.
type fileResult struct {
	result *lint.Result
	cached bool
	id     int
}

// lintFunc processes one file; cached reports whether the result came
// from the cache rather than a fresh parse.
type lintFunc func(path string) (res *lint.Result, cached bool, err error)

// workerPool fans file jobs out to worker goroutines. Results and
// errors travel on separate channels; the consumer must drain both.
// The worker count is kept in step with the parser pool size so workers
// never block waiting for a grammar.
type workerPool struct {
	numWorkers int
	jobs       chan fileJob
	results    chan fileResult
	errors     chan FileError
	wg         sync.WaitGroup
	lint       lintFunc
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	processed atomic.Int64
	failed    atomic.Int64
}

func newWorkerPool(numWorkers int, fn lintFunc, logger *slog.Logger) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &workerPool{
		numWorkers: numWorkers,
		jobs:       make(chan fileJob, numWorkers*2),
		results:    make(chan fileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		lint:       fn,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (wp *workerPool) start() {
	if !wp.started.CompareAndSwap(false, true) {
		return
	}
	wp.logger.Debug("starting lint worker pool", "workers", wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			res, cached, err := wp.lint(job.path)
			if err != nil {
				wp.failed.Add(1)
				wp.errors <- FileError{FilePath: job.path, Err: err}
				continue
			}
			wp.processed.Add(1)
			wp.results <- fileResult{result: res, cached: cached, id: job.id}
		}
	}
}

// submit enqueues a job, blocking when the queue is full.
func (wp *workerPool) submit(job fileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}
	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		return nil
	}
}

// finishSubmitting closes the jobs channel so workers drain and exit.
// Idempotent.
func (wp *workerPool) finishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// stop shuts the pool down: no new jobs, in-flight jobs finish, then
// the result channels close. Idempotent.
func (wp *workerPool) stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
	wp.wg.Wait()
	close(wp.results)
	close(wp.errors)
	wp.cancel()
	wp.logger.Debug("lint worker pool stopped",
		"processed", wp.processed.Load(),
		"failed", wp.failed.Load())
}
