// Package parallel runs independent work items on a bounded set of
// goroutines while keeping results in input order.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many work items run at once.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool of numWorkers goroutines; zero or negative
// means runtime.NumCPU().
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// Workers returns the concurrency bound.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessIndexed calls worker for every item and returns the results in
// item order. The first error cancels the context passed to the remaining
// workers and is returned once all started workers have finished; results
// of items that completed are still returned so the caller can release
// them.
func ProcessIndexed[T, R any](
	ctx context.Context,
	wp *WorkerPool,
	items []T,
	worker func(context.Context, int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))

	if wp.numWorkers == 1 {
		for i, item := range items {
			r, err := worker(ctx, i, item)
			if err != nil {
				return results, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)
	for i, item := range items {
		g.Go(func() error {
			r, err := worker(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
