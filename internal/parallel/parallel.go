package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Grain sizes for element loops. Flat per-element loops use GrainElements;
// loops whose body is itself parallel (per layer, per geometry set) use 1.
const (
	GrainElements = 2048
	GrainSmall    = 512
	GrainLarge    = 4096
)

var (
	defaultMu   sync.Mutex
	defaultPool *WorkerPool
)

// Default returns the process-wide pool, creating it on first use with
// GOMAXPROCS workers.
func Default() *WorkerPool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultPool == nil || !defaultPool.IsRunning() {
		defaultPool = NewWorkerPool(0)
	}
	return defaultPool
}

// SetDefaultWorkers replaces the process-wide pool with one of the given size.
// The previous pool is closed after its queued work has drained.
func SetDefaultWorkers(workers int) {
	defaultMu.Lock()
	old := defaultPool
	defaultPool = NewWorkerPool(workers)
	defaultMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// For calls fn over the half-open range [0, n) split into chunks of at least
// grain elements. Ranges not larger than grain run inline. Chunk boundaries
// depend only on n, grain and the pool size; fn must not share mutable state
// across chunks.
func For(n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}
	pool := Default()
	if n <= grain || pool.Workers() == 1 {
		fn(0, n)
		return
	}

	chunks := (n + grain - 1) / grain
	if maxChunks := pool.Workers() * 4; chunks > maxChunks {
		chunks = maxChunks
	}
	size := (n + chunks - 1) / chunks

	work := make([]func(), 0, chunks)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		work = append(work, func() { fn(start, end) })
	}
	pool.ExecuteAll(work)
}

// ForEach calls fn once per item index in [0, n) with a grain size of one.
// A single item runs inline. Returns the first error reported by fn; items
// already running are not interrupted.
func ForEach(n int, fn func(i int) error) error {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return fn(0)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
