package parallel_test

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mztrk/ExpendbyPeriods/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), parallel.NewWorkerPool(0).Workers())
	assert.Equal(t, runtime.NumCPU(), parallel.NewWorkerPool(-1).Workers())
	assert.Equal(t, 4, parallel.NewWorkerPool(4).Workers())
}

func TestProcessIndexed_PreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	for _, workers := range []int{1, 3, 16} {
		pool := parallel.NewWorkerPool(workers)
		results, err := parallel.ProcessIndexed(context.Background(), pool, items,
			func(_ context.Context, i int, v int) (int, error) {
				if v%7 == 0 {
					time.Sleep(time.Millisecond)
				}
				return i * v, nil
			})
		require.NoError(t, err)
		for i, r := range results {
			assert.Equal(t, i*i, r, "workers=%d item %d", workers, i)
		}
	}
}

func TestProcessIndexed_Empty(t *testing.T) {
	results, err := parallel.ProcessIndexed(context.Background(), parallel.NewWorkerPool(2), []int{},
		func(context.Context, int, int) (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestProcessIndexed_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)

	_, err := parallel.ProcessIndexed(context.Background(), parallel.NewWorkerPool(3), items,
		func(context.Context, int, int) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return 0, nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestProcessIndexed_FirstErrorCancels(t *testing.T) {
	boom := errors.New("boom")

	for _, workers := range []int{1, 4} {
		var cancelled atomic.Int32
		results, err := parallel.ProcessIndexed(context.Background(), parallel.NewWorkerPool(workers), []int{0, 1, 2, 3, 4, 5},
			func(ctx context.Context, i int, _ int) (string, error) {
				if i == 0 {
					return "", boom
				}
				if workers > 1 {
					<-ctx.Done()
					cancelled.Add(1)
					return "", ctx.Err()
				}
				return "ok", nil
			})
		require.ErrorIs(t, err, boom, "workers=%d", workers)
		assert.Len(t, results, 6)
		if workers > 1 {
			assert.Equal(t, int32(5), cancelled.Load())
		}
	}
}
