package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/pkg/logger"
)

// EncodeWorker drains the encode queue with a pool of goroutines.
type EncodeWorker interface {
	Start(ctx context.Context) error

	Stop() error

	IsRunning() bool

	GetStats() WorkerStats
}

// WorkerStats counts processed jobs since the worker started.
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

type encodeWorkerImpl struct {
	id        string
	taskQueue queue.TaskQueue
	registry  *queue.JobRegistry
	poolSize  int
	running   bool
	cancel    context.CancelFunc
	stats     WorkerStats
	mu        sync.RWMutex
	wg        sync.WaitGroup
}

// NewEncodeWorker builds a worker pool of poolSize goroutines consuming
// taskQueue. Job results are written into the registry records created at
// submission.
func NewEncodeWorker(id string, taskQueue queue.TaskQueue, registry *queue.JobRegistry, poolSize int) EncodeWorker {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &encodeWorkerImpl{
		id:        id,
		taskQueue: taskQueue,
		registry:  registry,
		poolSize:  poolSize,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

func (w *encodeWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Info("starting encode worker", map[string]interface{}{
		"worker_id": w.id,
		"pool_size": w.poolSize,
	})

	for i := 0; i < w.poolSize; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

func (w *encodeWorkerImpl) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false

	logger.Info("encode worker stopped", map[string]interface{}{
		"worker_id": w.id,
		"processed": w.stats.ProcessedJobs,
		"failed":    w.stats.FailedJobs,
	})
	return nil
}

func (w *encodeWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *encodeWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *encodeWorkerImpl) workerLoop(ctx context.Context, slot int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.taskQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Warn("dequeue failed", map[string]interface{}{
					"worker_id": w.id,
					"slot":      slot,
					"error":     err.Error(),
				})
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			if job == nil {
				continue
			}
			w.processJob(ctx, job, slot)
		}
	}
}

func (w *encodeWorkerImpl) processJob(ctx context.Context, job *entity.EncodeJob, slot int) {
	record := w.registry.Get(job.JobUUID())
	if record == nil {
		logger.Warn("dequeued job has no registry record", map[string]interface{}{
			"job_id": job.JobUUID(),
		})
		return
	}

	logger.Info("processing encode job", map[string]interface{}{
		"worker_id": w.id,
		"slot":      slot,
		"job_id":    job.JobUUID(),
		"video_id":  job.VideoID(),
		"preset":    job.Preset(),
	})

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})
	defer w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning--
		stats.ProcessedJobs++
	})

	record.SetRunning()
	err := job.Execute(ctx, record.SetProgress)
	if err != nil {
		record.SetFailed(err)
		w.updateStats(func(stats *WorkerStats) { stats.FailedJobs++ })
		logger.Error("encode job failed", map[string]interface{}{
			"job_id":   job.JobUUID(),
			"video_id": job.VideoID(),
			"preset":   job.Preset(),
			"error":    err.Error(),
		})
		return
	}

	record.SetSucceeded()
	w.updateStats(func(stats *WorkerStats) { stats.SuccessfulJobs++ })
	logger.Info("encode job finished", map[string]interface{}{
		"job_id":   job.JobUUID(),
		"video_id": job.VideoID(),
		"preset":   job.Preset(),
	})
}

func (w *encodeWorkerImpl) updateStats(fn func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}
