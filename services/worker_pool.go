package services

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Job is a unit of background work, such as one notification email.
type Job struct {
	// Name is used in logs only.
	Name    string
	Execute func(ctx context.Context) error
}

// JobSubmitter accepts background work without blocking the caller.
type JobSubmitter interface {
	Submit(job Job) bool
}

// WorkerPool runs jobs on a fixed number of goroutines fed by a bounded queue.
// Jobs submitted while the queue is full are dropped.
type WorkerPool struct {
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	metrics  *workerPoolMetrics
	config   config.WorkerPoolConfig
	mu       sync.Mutex
	running  bool
}

type workerPoolMetrics struct {
	queueDepth    prometheus.Gauge
	activeWorkers prometheus.Gauge
	completedJobs prometheus.Counter
	droppedJobs   prometheus.Counter
	errorCount    prometheus.Counter
	jobDuration   prometheus.Histogram
}

func newWorkerPoolMetrics(reg prometheus.Registerer) *workerPoolMetrics {
	factory := promauto.With(reg)
	return &workerPoolMetrics{
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_worker_pool_queue_depth",
			Help: "Current number of jobs waiting in queue",
		}),
		activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_worker_pool_active_workers",
			Help: "Current number of workers processing jobs",
		}),
		completedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_completed_jobs_total",
			Help: "Total number of executed jobs",
		}),
		droppedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_dropped_jobs_total",
			Help: "Total number of jobs dropped due to full queue or shutdown",
		}),
		errorCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_errors_total",
			Help: "Total number of job execution errors",
		}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_worker_pool_job_duration_seconds",
			Help:    "Time taken to execute jobs",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// NewWorkerPool creates a stopped pool. Metrics are registered on reg when it
// is non-nil.
func NewWorkerPool(cfg config.WorkerPoolConfig, reg prometheus.Registerer) *WorkerPool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.JobTimeoutSeconds <= 0 {
		cfg.JobTimeoutSeconds = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue: make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.GetLogger().Named("worker-pool"),
		metrics:  newWorkerPoolMetrics(reg),
		config:   cfg,
	}
}

// Start launches the workers. Repeated calls are no-ops.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		wp.logger.Warn("Worker pool already running")
		return
	}
	wp.running = true

	wp.logger.Infow("Starting worker pool",
		"maxWorkers", wp.config.MaxWorkers,
		"queueSize", wp.config.QueueSize)

	for i := 0; i < wp.config.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker drains the queue until it is closed on shutdown.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	wp.logger.Debugw("Worker started", "workerId", id)

	for job := range wp.jobQueue {
		wp.metrics.queueDepth.Dec()
		wp.executeJob(id, job)
	}
	wp.logger.Debugw("Worker stopped", "workerId", id)
}

func (wp *WorkerPool) executeJob(workerID int, job Job) {
	wp.metrics.activeWorkers.Inc()
	defer wp.metrics.activeWorkers.Dec()

	start := time.Now()

	jobCtx, cancel := context.WithTimeout(wp.ctx, time.Duration(wp.config.JobTimeoutSeconds)*time.Second)
	defer cancel()

	if err := job.Execute(jobCtx); err != nil {
		wp.logger.Errorw("Job execution failed",
			"job", job.Name,
			"workerId", workerID,
			"error", err,
			"duration", time.Since(start))
		wp.metrics.errorCount.Inc()
	} else {
		wp.logger.Debugw("Job completed",
			"job", job.Name,
			"workerId", workerID,
			"duration", time.Since(start))
	}

	wp.metrics.jobDuration.Observe(time.Since(start).Seconds())
	wp.metrics.completedJobs.Inc()
}

// Submit queues a job without blocking. It returns false when the job was
// dropped because the queue is full or the pool is not running.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - worker pool not running", "job", job.Name)
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.metrics.queueDepth.Inc()
		wp.logger.Debugw("Job submitted", "job", job.Name)
		return true
	default:
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - queue full",
			"job", job.Name,
			"queueSize", wp.config.QueueSize)
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued and in-flight jobs to
// finish. When ctx expires first, running jobs are cancelled and ctx.Err() is
// returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.running {
		wp.mu.Unlock()
		return nil
	}
	wp.running = false
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.logger.Info("Initiating worker pool shutdown...")

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.logger.Info("Worker pool shutdown complete - all workers finished")
		return nil
	case <-ctx.Done():
		wp.cancel()
		wp.logger.Warn("Worker pool shutdown timed out - some jobs were cancelled")
		return ctx.Err()
	}
}

// QueueDepth returns the number of jobs waiting in the queue.
func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobQueue)
}

// IsRunning reports whether the pool accepts jobs.
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.running
}
