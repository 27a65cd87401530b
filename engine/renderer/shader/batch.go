package shader

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
)

// batchQueueSize bounds the pending builds per pool; SubmitTask blocks once it is full.
const batchQueueSize = 256

// batchBuilder is the implementation of the BatchBuilder interface.
type batchBuilder struct {
	mu     sync.RWMutex
	closed bool

	// pool is created once and reused by every BuildSources call, each call waits on its own WaitGroup.
	pool    worker.DynamicWorkerPool
	workers int
	nextID  atomic.Int64
}

// BatchBuilder builds many programs concurrently on one long-lived worker pool.
// It is safe for concurrent use; every BuildSources call waits only for its own builds.
type BatchBuilder interface {
	// BuildSources builds every builder against the shared, read-only source map and returns
	// the processed sources keyed by the same names. Each builder is consumed.
	// All failures are reported together, ordered by name; on any failure no sources are returned.
	//
	// Parameters:
	//   - sm: the source map shared by all builds
	//   - builders: the builders to build, keyed by program name
	//
	// Returns:
	//   - map[string]string: the built sources keyed by program name
	//   - error: the joined build errors, ErrBatchClosed after Close, or nil
	BuildSources(sm SourceMap, builders map[string]Builder) (map[string]string, error)

	// Workers returns the number of pool workers.
	Workers() int

	// Close stops the worker pool. Calling Close more than once is a no-op.
	Close()
}

var _ BatchBuilder = &batchBuilder{}

// NewBatchBuilder starts a worker pool for batch builds.
//
// Parameters:
//   - workers: the maximum number of concurrent builds, values <= 0 use runtime.NumCPU()
//
// Returns:
//   - BatchBuilder: the batch builder, Close it when done
func NewBatchBuilder(workers int) BatchBuilder {
	workers = common.Coalesce(max(workers, 0), runtime.NumCPU())
	return &batchBuilder{
		pool:    worker.NewDynamicWorkerPool(workers, batchQueueSize, time.Second),
		workers: workers,
	}
}

func (bb *batchBuilder) Workers() int {
	return bb.workers
}

func (bb *batchBuilder) Close() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed {
		return
	}
	bb.closed = true
	bb.pool.Stop()
}

func (bb *batchBuilder) BuildSources(sm SourceMap, builders map[string]Builder) (map[string]string, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	if bb.closed {
		return nil, ErrBatchClosed
	}
	if len(builders) == 0 {
		return map[string]string{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sources = make(map[string]string, len(builders))
		failed  = make(map[string]error)
	)

	for _, name := range common.SortedKeys(builders) {
		b := builders[name]
		wg.Add(1)
		bb.pool.SubmitTask(worker.Task{
			ID:      int(bb.nextID.Add(1)),
			Payload: name,
			Do: func() (any, error) {
				defer wg.Done()
				src, err := b.BuildSource(sm)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed[name] = err
					return nil, err
				}
				sources[name] = src
				return src, nil
			},
		})
	}
	wg.Wait()

	if len(failed) > 0 {
		errs := make([]error, 0, len(failed))
		for _, name := range common.SortedKeys(failed) {
			errs = append(errs, fmt.Errorf("%s: %w", name, failed[name]))
		}
		return nil, errors.Join(errs...)
	}
	return sources, nil
}
