package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/pkg/config"
)

func submit(t *testing.T, d *queue.Dispatcher, videoID, preset string, exec entity.ExecFunc) gateway.JobHandle {
	t.Helper()
	handle, err := d.Submit(context.Background(), entity.NewEncodeJob(videoID, preset, config.PresetConfig{}, exec))
	require.NoError(t, err)
	return handle
}

func waitDone(t *testing.T, handles ...gateway.JobHandle) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, h := range handles {
			if !h.IsDone() {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWorkerProcessesJobs(t *testing.T) {
	registry := queue.NewJobRegistry()
	dispatcher := queue.NewDispatcher(queue.NewMemoryTaskQueue(8), registry)
	w := NewEncodeWorker("test", dispatcher.Queue(), registry, 2)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	ok := submit(t, dispatcher, "abc123", "HD", func(ctx context.Context, report entity.ProgressFunc) error {
		report(50)
		return nil
	})
	failed := submit(t, dispatcher, "abc123", "SD", func(ctx context.Context, report entity.ProgressFunc) error {
		return errors.New("encoder exited 1")
	})

	waitDone(t, ok, failed)

	assert.True(t, ok.IsSuccessful())
	assert.Equal(t, 100, ok.Progress())
	assert.NoError(t, ok.Err())

	assert.False(t, failed.IsSuccessful())
	require.Error(t, failed.Err())
	assert.Contains(t, failed.Err().Error(), "encoder exited 1")

	stats := w.GetStats()
	assert.Equal(t, uint64(2), stats.ProcessedJobs)
	assert.Equal(t, uint64(1), stats.SuccessfulJobs)
	assert.Equal(t, uint64(1), stats.FailedJobs)
}

func TestWorkerReportsProgress(t *testing.T) {
	registry := queue.NewJobRegistry()
	dispatcher := queue.NewDispatcher(queue.NewMemoryTaskQueue(1), registry)
	w := NewEncodeWorker("test", dispatcher.Queue(), registry, 1)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	release := make(chan struct{})
	handle := submit(t, dispatcher, "abc123", "HD", func(ctx context.Context, report entity.ProgressFunc) error {
		report(30)
		<-release
		return nil
	})

	require.Eventually(t, func() bool { return handle.Progress() == 30 }, 5*time.Second, 10*time.Millisecond)
	assert.False(t, handle.IsDone())

	close(release)
	waitDone(t, handle)
	assert.Equal(t, 100, handle.Progress())
}

func TestWorkerStartTwice(t *testing.T) {
	registry := queue.NewJobRegistry()
	q := queue.NewMemoryTaskQueue(1)
	w := NewEncodeWorker("test", q, registry, 1)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	registry := queue.NewJobRegistry()
	w := NewEncodeWorker("test", queue.NewMemoryTaskQueue(1), registry, 1)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	assert.NoError(t, w.Stop())
}
