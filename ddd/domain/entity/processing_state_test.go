package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/vo"
)

func TestNewProcessingState(t *testing.T) {
	s := NewProcessingState(42)

	assert.Equal(t, uint(42), s.VideoID)
	assert.Equal(t, vo.StatusPending, s.Status)
	assert.Zero(t, s.Progress)
	assert.Empty(t, s.Message)
	assert.WithinDuration(t, time.Now(), s.StartedAt, time.Second)
}

func TestSetPendingResetsRun(t *testing.T) {
	s := NewProcessingState(1)
	s.SetProcessing(80)
	s.SetErrors([]string{"encode exploded"})
	before := s.StartedAt

	time.Sleep(10 * time.Millisecond)
	s.SetPending()

	assert.Equal(t, vo.StatusPending, s.Status)
	assert.Zero(t, s.Progress)
	assert.Empty(t, s.Message)
	assert.True(t, s.StartedAt.After(before))
}

func TestSetErrorsAccumulates(t *testing.T) {
	s := NewProcessingState(1)

	s.SetErrors([]string{"HD job failed"})
	require.Equal(t, vo.StatusFailed, s.Status)
	assert.Equal(t, "HD job failed", s.Message)

	s.SetErrors([]string{"SD job failed"})
	assert.Equal(t, "HD job failed\nSD job failed", s.Message)
}

func TestSetErrorsEmptyKeepsStatus(t *testing.T) {
	s := NewProcessingState(1)
	s.SetProcessing(50)

	s.SetErrors(nil)

	assert.Equal(t, vo.StatusProcessing, s.Status)
	assert.Empty(t, s.Message)
}

func TestSetRestartKeepsRunDetails(t *testing.T) {
	s := NewProcessingState(1)
	s.SetErrors([]string{"encode exploded"})

	s.SetRestart()

	assert.Equal(t, vo.StatusRestart, s.Status)
	// The failed run stays visible until the new run begins.
	assert.Equal(t, "encode exploded", s.Message)
}

func TestSetSuccess(t *testing.T) {
	s := NewProcessingState(1)
	s.SetProcessing(100)
	s.SetSuccess()

	assert.Equal(t, vo.StatusSuccess, s.Status)
	assert.Equal(t, float64(100), s.Progress)
}
