package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.GreaterOrEqual(t, cfg.MaxWorkers, 2)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.False(t, cfg.CollectMetrics)

	assert.Equal(t, 4, cfg.WithWorkers(4).MaxWorkers)
	assert.Equal(t, time.Second, cfg.WithTimeout(time.Second).Timeout)
	assert.True(t, cfg.WithMetrics().CollectMetrics)
}

func TestWorkerPool_Execute(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(4))

	inputs := make([]int, 32)
	for i := range inputs {
		inputs[i] = i
	}

	results := pool.ExecuteFunc(context.Background(), inputs,
		func(_ context.Context, n int) (int, error) {
			return n * n, nil
		})

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.NoError(t, r.Error)
		assert.Equal(t, i, r.Input, "results keep input order")
		assert.Equal(t, i*i, r.Result)
	}
}

func TestWorkerPool_EmptyInput(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())
	assert.Nil(t, pool.Execute(context.Background(), nil))
}

func TestWorkerPool_Errors(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(2))
	results := pool.ExecuteFunc(context.Background(), []int{1, 2, 3},
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, fmt.Errorf("task %d failed", n)
			}
			return n, nil
		})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.NoError(t, results[2].Error)
}

func TestWorkerPool_Concurrency(t *testing.T) {
	var running, peak int32
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(4))

	inputs := make([]int, 16)
	pool.ExecuteFunc(context.Background(), inputs,
		func(_ context.Context, _ int) (int, error) {
			cur := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return 0, nil
		})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestWorkerPool_Metrics(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(2).WithMetrics())
	pool.ExecuteFunc(context.Background(), []int{1, 2, 3, 4},
		func(_ context.Context, n int) (int, error) {
			if n == 4 {
				return 0, fmt.Errorf("boom")
			}
			return n, nil
		})

	m := pool.Metrics()
	assert.Equal(t, int64(4), m.TotalTasks)
	assert.Equal(t, int64(3), m.CompletedTasks)
	assert.Equal(t, int64(1), m.FailedTasks)
	assert.Greater(t, m.TotalDuration, time.Duration(0))
}

func TestWorkerPool_Timeout(t *testing.T) {
	pool := NewWorkerPool[int, int](
		DefaultPoolConfig().WithWorkers(1).WithTimeout(10 * time.Millisecond))

	start := time.Now()
	pool.ExecuteFunc(context.Background(), []int{1, 2, 3},
		func(ctx context.Context, n int) (int, error) {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Second):
				return n, nil
			}
		})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
