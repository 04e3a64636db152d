package queue

import (
	"context"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/pkg/logger"
)

// Dispatcher connects job submission to the in-process queue. Each submitted
// job gets a registry record that doubles as its poll handle; the worker pool
// consumes the queue and writes results back into the record.
type Dispatcher struct {
	queue    TaskQueue
	registry *JobRegistry
}

var _ port.JobDispatcher = (*Dispatcher)(nil)

func NewDispatcher(queue TaskQueue, registry *JobRegistry) *Dispatcher {
	return &Dispatcher{queue: queue, registry: registry}
}

// Submit registers and enqueues a job. The returned handle is valid
// immediately; the job may start at any point afterwards.
func (d *Dispatcher) Submit(ctx context.Context, job *entity.EncodeJob) (gateway.JobHandle, error) {
	record := d.registry.Register(job.JobUUID(), job.VideoID(), job.Preset())
	if err := d.queue.Enqueue(ctx, job); err != nil {
		d.registry.Remove(job.JobUUID())
		return nil, err
	}
	logger.Debug("job enqueued", map[string]interface{}{
		"job_id":   job.JobUUID(),
		"video_id": job.VideoID(),
		"preset":   job.Preset(),
	})
	return record, nil
}

// Registry exposes the record store so the worker pool can resolve records
// for dequeued jobs.
func (d *Dispatcher) Registry() *JobRegistry { return d.registry }

// Queue exposes the underlying task queue.
func (d *Dispatcher) Queue() TaskQueue { return d.queue }

// Close shuts the queue; pending jobs are dropped.
func (d *Dispatcher) Close() error {
	return d.queue.Close()
}
