package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoolConfig(workers, queue int) config.WorkerPoolConfig {
	return config.WorkerPoolConfig{
		MaxWorkers:             workers,
		QueueSize:              queue,
		JobTimeoutSeconds:      5,
		ShutdownTimeoutSeconds: 5,
	}
}

func TestWorkerPool_SubmitAndExecute(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(2, 10), nil)
	pool.Start()
	defer pool.Shutdown(context.Background())

	var executed int32
	done := make(chan struct{})

	submitted := pool.Submit(Job{
		Name: "test-job",
		Execute: func(ctx context.Context) error {
			atomic.AddInt32(&executed, 1)
			close(done)
			return nil
		},
	})
	require.True(t, submitted, "Job should be accepted")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Job did not execute within timeout")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&executed))
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(2, 100), nil)
	pool.Start()
	defer pool.Shutdown(context.Background())

	var maxConcurrent int32
	var currentConcurrent int32
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Submit(Job{
			Name: "concurrent-job",
			Execute: func(ctx context.Context) error {
				defer wg.Done()

				current := atomic.AddInt32(&currentConcurrent, 1)
				defer atomic.AddInt32(&currentConcurrent, -1)

				mu.Lock()
				if current > maxConcurrent {
					maxConcurrent = current
				}
				mu.Unlock()

				time.Sleep(50 * time.Millisecond)
				return nil
			},
		})
	}

	wg.Wait()

	assert.LessOrEqual(t, maxConcurrent, int32(2), "Should never exceed 2 concurrent workers")
}

func TestWorkerPool_QueueFull(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewWorkerPool(testPoolConfig(1, 2), reg)
	pool.Start()
	defer pool.Shutdown(context.Background())

	blocker := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(Job{
		Name: "blocker",
		Execute: func(ctx context.Context) error {
			close(started)
			<-blocker
			return nil
		},
	})
	<-started

	pool.Submit(Job{Name: "queued-1", Execute: func(ctx context.Context) error { return nil }})
	pool.Submit(Job{Name: "queued-2", Execute: func(ctx context.Context) error { return nil }})
	assert.Equal(t, 2, pool.QueueDepth())

	dropped := !pool.Submit(Job{Name: "overflow", Execute: func(ctx context.Context) error { return nil }})
	assert.True(t, dropped, "Job should be dropped when queue is full")
	assert.Equal(t, 1.0, testutil.ToFloat64(pool.metrics.droppedJobs))

	close(blocker)
}

func TestWorkerPool_ShutdownDrainsQueue(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(1, 10), nil)
	pool.Start()

	var completed int32
	for i := 0; i < 3; i++ {
		pool.Submit(Job{
			Name: "slow-job",
			Execute: func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, pool.Shutdown(ctx))
	assert.Equal(t, int32(3), atomic.LoadInt32(&completed), "Queued jobs should complete during shutdown")
	assert.False(t, pool.IsRunning())
}

func TestWorkerPool_ShutdownTimeout(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(1, 10), nil)
	pool.Start()

	jobDone := make(chan struct{})
	defer close(jobDone)

	started := make(chan struct{})
	pool.Submit(Job{
		Name: "very-slow-job",
		Execute: func(ctx context.Context) error {
			close(started)
			// Ignores ctx to simulate an uncooperative job.
			select {
			case <-jobDone:
				return nil
			case <-time.After(10 * time.Second):
				return nil
			}
		},
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := pool.Shutdown(ctx)
	assert.Error(t, err, "Shutdown should timeout")
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(1, 10), nil)
	pool.Start()
	require.NoError(t, pool.Shutdown(context.Background()))

	assert.False(t, pool.Submit(Job{Name: "late", Execute: func(ctx context.Context) error { return nil }}))
	assert.NoError(t, pool.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestWorkerPool_DoubleStart(t *testing.T) {
	pool := NewWorkerPool(testPoolConfig(2, 10), nil)
	pool.Start()
	pool.Start()
	defer pool.Shutdown(context.Background())

	assert.True(t, pool.IsRunning())
}

func TestWorkerPool_JobError(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewWorkerPool(testPoolConfig(1, 10), reg)
	pool.Start()

	var executed int32
	pool.Submit(Job{
		Name: "error-job",
		Execute: func(ctx context.Context) error {
			atomic.AddInt32(&executed, 1)
			return assert.AnError
		},
	})
	pool.Submit(Job{
		Name: "success-job",
		Execute: func(ctx context.Context) error {
			atomic.AddInt32(&executed, 1)
			return nil
		},
	})

	require.NoError(t, pool.Shutdown(context.Background()))

	assert.Equal(t, int32(2), atomic.LoadInt32(&executed), "Both jobs should execute")
	assert.Equal(t, 1.0, testutil.ToFloat64(pool.metrics.errorCount))
	assert.Equal(t, 2.0, testutil.ToFloat64(pool.metrics.completedJobs))
}
