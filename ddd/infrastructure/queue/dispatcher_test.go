package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/pkg/config"
)

func newJob(videoID, preset string) *entity.EncodeJob {
	return entity.NewEncodeJob(videoID, preset, config.PresetConfig{}, nil)
}

func TestDispatcherSubmit(t *testing.T) {
	registry := NewJobRegistry()
	dispatcher := NewDispatcher(NewMemoryTaskQueue(4), registry)

	job := newJob("abc123", "HD")
	handle, err := dispatcher.Submit(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, job.JobUUID(), handle.ID())
	assert.False(t, handle.IsDone())
	assert.Zero(t, handle.Progress())
	assert.Same(t, registry.Get(job.JobUUID()), handle)

	dequeued, err := dispatcher.Queue().Dequeue(context.Background())
	require.NoError(t, err)
	assert.Same(t, job, dequeued)
}

func TestDispatcherSubmitFullQueue(t *testing.T) {
	registry := NewJobRegistry()
	dispatcher := NewDispatcher(NewMemoryTaskQueue(1), registry)
	ctx := context.Background()

	_, err := dispatcher.Submit(ctx, newJob("abc123", "HD"))
	require.NoError(t, err)

	overflow := newJob("abc123", "SD")
	_, err = dispatcher.Submit(ctx, overflow)
	require.Error(t, err)
	// A failed submission leaves no dangling record behind.
	assert.Nil(t, registry.Get(overflow.JobUUID()))
	assert.Equal(t, 1, registry.Size())
}

func TestDispatcherSubmitAfterClose(t *testing.T) {
	dispatcher := NewDispatcher(NewMemoryTaskQueue(1), NewJobRegistry())
	require.NoError(t, dispatcher.Close())

	_, err := dispatcher.Submit(context.Background(), newJob("abc123", "HD"))
	assert.Error(t, err)
}

func TestJobRecordLifecycle(t *testing.T) {
	registry := NewJobRegistry()
	record := registry.Register("job-1", "abc123", "HD")

	assert.False(t, record.IsDone())
	assert.False(t, record.IsSuccessful())

	record.SetRunning()
	record.SetProgress(40)
	assert.Equal(t, 40, record.Progress())

	// Late or out-of-order reports never move progress backwards.
	record.SetProgress(25)
	assert.Equal(t, 40, record.Progress())

	record.SetSucceeded()
	assert.True(t, record.IsDone())
	assert.True(t, record.IsSuccessful())
	assert.Equal(t, 100, record.Progress())
	assert.NoError(t, record.Err())
}

func TestJobRecordFailure(t *testing.T) {
	registry := NewJobRegistry()
	record := registry.Register("job-1", "abc123", "HD")

	record.SetRunning()
	record.SetFailed(assert.AnError)

	assert.True(t, record.IsDone())
	assert.False(t, record.IsSuccessful())
	assert.ErrorIs(t, record.Err(), assert.AnError)
}

func TestMemoryTaskQueueTryDequeueEmpty(t *testing.T) {
	q := NewMemoryTaskQueue(2)

	job, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.True(t, q.IsEmpty())
}

func TestMemoryTaskQueueMetrics(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newJob("abc123", "HD")))
	require.NoError(t, q.Enqueue(ctx, newJob("abc123", "SD")))
	_, err := q.Dequeue(ctx)
	require.NoError(t, err)

	m := q.GetMetrics()
	assert.Equal(t, uint64(2), m.EnqueueCount)
	assert.Equal(t, uint64(1), m.DequeueCount)
	assert.Equal(t, 1, m.CurrentSize)
	assert.Equal(t, 2, m.MaxSize)
}
