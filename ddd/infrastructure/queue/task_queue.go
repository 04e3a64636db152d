package queue

import (
	"context"
	"fmt"
	"sync"

	"video-pipeline-service/ddd/domain/entity"
)

// TaskQueue buffers encode jobs between submission and the worker pool.
type TaskQueue interface {
	// Enqueue adds a job without blocking. Fails when the queue is full or closed.
	Enqueue(ctx context.Context, job *entity.EncodeJob) error

	// Dequeue blocks until a job is available or the context is done.
	Dequeue(ctx context.Context) (*entity.EncodeJob, error)

	// TryDequeue returns (nil, nil) when the queue is empty.
	TryDequeue(ctx context.Context) (*entity.EncodeJob, error)

	Size() int

	IsEmpty() bool

	Close() error

	IsClosed() bool
}

// MemoryTaskQueue is a channel-backed in-process queue.
type MemoryTaskQueue struct {
	queue   chan *entity.EncodeJob
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics counts queue traffic since creation.
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

// NewMemoryTaskQueue creates a queue holding at most capacity pending jobs.
func NewMemoryTaskQueue(capacity int) *MemoryTaskQueue {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryTaskQueue{
		queue: make(chan *entity.EncodeJob, capacity),
		metrics: &QueueMetrics{
			MaxSize: capacity,
		},
	}
}

func (q *MemoryTaskQueue) Enqueue(ctx context.Context, job *entity.EncodeJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	select {
	case q.queue <- job:
		q.metrics.incEnqueue()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *MemoryTaskQueue) Dequeue(ctx context.Context) (*entity.EncodeJob, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, fmt.Errorf("queue is closed")
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case job := <-ch:
		if job == nil {
			return nil, fmt.Errorf("queue is closed")
		}
		q.metrics.incDequeue()
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryTaskQueue) TryDequeue(ctx context.Context) (*entity.EncodeJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case job := <-q.queue:
		q.metrics.incDequeue()
		return job, nil
	default:
		return nil, nil
	}
}

func (q *MemoryTaskQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}
	return len(q.queue)
}

func (q *MemoryTaskQueue) IsEmpty() bool {
	return q.Size() == 0
}

func (q *MemoryTaskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *MemoryTaskQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics returns a snapshot of the queue counters.
func (q *MemoryTaskQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	metrics := QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
	}
	metrics.CurrentSize = q.Size()
	return metrics
}

func (m *QueueMetrics) incEnqueue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnqueueCount++
}

func (m *QueueMetrics) incDequeue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DequeueCount++
}
