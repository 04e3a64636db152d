package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/vo"
)

func seedVideo(t *testing.T, videoRepo *fakeVideoRepo, stateRepo *fakeStateRepo, publicID string) *entity.Video {
	t.Helper()
	video := entity.NewVideo(publicID, "clip", 1)
	require.NoError(t, videoRepo.Create(context.Background(), video))
	require.NoError(t, stateRepo.Save(context.Background(), video.ProcessingState))
	return video
}

func TestTranscodeVideoSuccess(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	formatRepo := newFakeFormatRepo()
	backend := newFakeBackend()

	video := seedVideo(t, videoRepo, stateRepo, "abc123")

	hd := &fakeHandle{id: "hd"}
	sd := &fakeHandle{id: "sd"}
	hd.finish(nil)
	sd.finish(nil)
	backend.handles = []gateway.JobHandle{hd, sd}
	backend.formats = []gateway.Format{
		{Name: "HD", Bitrate: 5636096},
		{Name: "SD", Bitrate: 2359296},
	}

	app := NewTranscodeApp(videoRepo, stateRepo, formatRepo, backend, time.Millisecond)
	require.NoError(t, app.TranscodeVideo(context.Background(), "abc123"))

	state, err := stateRepo.GetByVideoID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusSuccess, state.Status)
	assert.Empty(t, state.Message)

	formats, err := formatRepo.ListByVideoID(context.Background(), video.ID)
	require.NoError(t, err)
	require.Len(t, formats, 2)
	assert.Equal(t, "HD", formats[0].Name)
	assert.Equal(t, int64(5636096), formats[0].Bitrate)

	assert.Equal(t, []string{"abc123/" + video.PublicThumbnailID}, backend.thumbnails)
	assert.Equal(t, []string{"abc123/" + video.PublicPosterFramesID}, backend.posterFrames)
}

func TestTranscodeVideoSingleFailureDoesNotCancelSiblings(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	formatRepo := newFakeFormatRepo()
	backend := newFakeBackend()

	video := seedVideo(t, videoRepo, stateRepo, "abc123")

	ok := &fakeHandle{id: "ok"}
	bad := &fakeHandle{id: "bad"}
	bad.finish(errors.New("encoder exited 1"))
	backend.handles = []gateway.JobHandle{ok, bad}
	backend.formats = []gateway.Format{{Name: "HD", Bitrate: 5636096}}

	app := NewTranscodeApp(videoRepo, stateRepo, formatRepo, backend, time.Millisecond)

	// Let the healthy job finish on its own while polling is under way.
	go func() {
		time.Sleep(20 * time.Millisecond)
		ok.finish(nil)
	}()

	err := app.TranscodeVideo(context.Background(), "abc123")
	require.Error(t, err)

	state, stateErr := stateRepo.GetByVideoID(context.Background(), video.ID)
	require.NoError(t, stateErr)
	assert.Equal(t, vo.StatusFailed, state.Status)
	assert.Contains(t, state.Message, "encoder exited 1")
	// The surviving job was polled to completion before the state flipped.
	assert.True(t, ok.IsDone())

	// The rendition produced by the surviving job is still recorded.
	formats, formatErr := formatRepo.ListByVideoID(context.Background(), video.ID)
	require.NoError(t, formatErr)
	require.Len(t, formats, 1)
	assert.Equal(t, "HD", formats[0].Name)
	assert.Equal(t, int64(5636096), formats[0].Bitrate)

	// Thumbnail and poster frames are skipped on failure.
	assert.Empty(t, backend.thumbnails)
	assert.Empty(t, backend.posterFrames)
}

func TestTranscodeVideoNoSource(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	backend := newFakeBackend()
	backend.startErr = &gateway.SourceNotFoundError{VideoID: "abc123"}

	video := seedVideo(t, videoRepo, stateRepo, "abc123")

	app := NewTranscodeApp(videoRepo, stateRepo, newFakeFormatRepo(), backend, time.Millisecond)
	err := app.TranscodeVideo(context.Background(), "abc123")
	require.Error(t, err)

	state, stateErr := stateRepo.GetByVideoID(context.Background(), video.ID)
	require.NoError(t, stateErr)
	assert.Equal(t, vo.StatusFailed, state.Status)
	assert.Contains(t, state.Message, "no uploaded source")
}

func TestTranscodeVideoUnknownVideo(t *testing.T) {
	app := NewTranscodeApp(newFakeVideoRepo(), newFakeStateRepo(), newFakeFormatRepo(), newFakeBackend(), time.Millisecond)
	err := app.TranscodeVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTranscodeVideoRestartClearsPriorErrors(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	backend := newFakeBackend()

	video := seedVideo(t, videoRepo, stateRepo, "abc123")
	video.ProcessingState.SetErrors([]string{"previous failure"})
	require.NoError(t, stateRepo.Save(context.Background(), video.ProcessingState))

	done := &fakeHandle{id: "hd"}
	done.finish(nil)
	backend.handles = []gateway.JobHandle{done}
	backend.formats = []gateway.Format{{Name: "HD", Bitrate: 1024}}

	app := NewTranscodeApp(videoRepo, stateRepo, newFakeFormatRepo(), backend, time.Millisecond)
	require.NoError(t, app.TranscodeVideo(context.Background(), "abc123"))

	state, err := stateRepo.GetByVideoID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusSuccess, state.Status)
	assert.Empty(t, state.Message)
}

func TestMeanProgress(t *testing.T) {
	assert.Equal(t, float64(50), meanProgress([]int{0, 100}))
	assert.Equal(t, float64(100), meanProgress(nil))
	assert.InDelta(t, 33.33, meanProgress([]int{0, 0, 100}), 0.01)
}
