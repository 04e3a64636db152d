package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/vo"
)

func TestGetVideoCacheReadThrough(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	backend := newFakeBackend()
	cache := newFakeCache()
	ctx := context.Background()

	video := seedVideo(t, videoRepo, stateRepo, "abc123")
	video.Formats = []entity.VideoFormat{{Name: "HD", Bitrate: 5636096}}

	app := NewVideoApp(videoRepo, stateRepo, backend, &fakePublisher{}, cache)

	first, err := app.GetVideo(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, 1, cache.sets)
	assert.Zero(t, cache.hits)
	require.Len(t, first.Formats, 1)
	assert.Equal(t, "http://assets/videos/abc123/HD.mp4", first.Formats[0].URL)

	second, err := app.GetVideo(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Formats, second.Formats)
}

func TestGetVideoWithoutCache(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	seedVideo(t, videoRepo, stateRepo, "abc123")

	app := NewVideoApp(videoRepo, stateRepo, newFakeBackend(), &fakePublisher{}, nil)
	d, err := app.GetVideo(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", d.ID)
}

func TestGetVideoNotFound(t *testing.T) {
	app := NewVideoApp(newFakeVideoRepo(), newFakeStateRepo(), newFakeBackend(), &fakePublisher{}, nil)

	_, err := app.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeleteVideoClearsRecordsAndStorage(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	backend := newFakeBackend()
	seedVideo(t, videoRepo, stateRepo, "abc123")

	app := NewVideoApp(videoRepo, stateRepo, backend, &fakePublisher{}, nil)
	require.NoError(t, app.DeleteVideo(context.Background(), "abc123"))

	_, err := videoRepo.GetByPublicID(context.Background(), "abc123")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Equal(t, []string{"abc123"}, backend.deleted)
}

func TestRestartProcessing(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	publisher := &fakePublisher{}

	video := seedVideo(t, videoRepo, stateRepo, "abc123")
	video.ProcessingState.SetErrors([]string{"boom"})
	require.NoError(t, stateRepo.Save(context.Background(), video.ProcessingState))

	app := NewVideoApp(videoRepo, stateRepo, newFakeBackend(), publisher, nil)
	require.NoError(t, app.RestartProcessing(context.Background(), "abc123"))

	state, err := stateRepo.GetByVideoID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusRestart, state.Status)
	assert.Equal(t, []string{"abc123"}, publisher.published)
}

func TestUploadSubtitle(t *testing.T) {
	videoRepo := newFakeVideoRepo()
	stateRepo := newFakeStateRepo()
	backend := newFakeBackend()
	video := seedVideo(t, videoRepo, stateRepo, "abc123")

	subtitleRepo := &fakeSubtitleRepo{}
	app := NewSubtitleApp(videoRepo, subtitleRepo, backend)

	d, err := app.UploadSubtitle(context.Background(), &cqe.UploadSubtitleCqe{
		VideoID:  "abc123",
		Language: "fr",
		Content:  "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nBonjour\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "fr", d.Language)
	assert.NotEmpty(t, d.ID)
	assert.Contains(t, backend.subtitles, "abc123/"+d.ID+".fr")
	require.Len(t, subtitleRepo.created, 1)
	assert.Equal(t, video.ID, subtitleRepo.created[0].VideoID)
}

func TestUploadSubtitleRejectsBadLanguage(t *testing.T) {
	app := NewSubtitleApp(newFakeVideoRepo(), &fakeSubtitleRepo{}, newFakeBackend())

	for _, code := range []string{"", "f", "fra", "FR", "xx"} {
		_, err := app.UploadSubtitle(context.Background(), &cqe.UploadSubtitleCqe{
			VideoID:  "abc123",
			Language: code,
			Content:  "WEBVTT\n",
		})
		var validation *gateway.ValidationError
		require.ErrorAs(t, err, &validation, "language %q", code)
		assert.Equal(t, "language", validation.Field)
	}
}

func TestUploadSubtitleRejectsNonVTTContent(t *testing.T) {
	app := NewSubtitleApp(newFakeVideoRepo(), &fakeSubtitleRepo{}, newFakeBackend())

	_, err := app.UploadSubtitle(context.Background(), &cqe.UploadSubtitleCqe{
		VideoID:  "abc123",
		Language: "en",
		Content:  "1\n00:00:00,000 --> 00:00:01,000\nsrt cue\n",
	})
	var validation *gateway.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Field)
}

type fakeSubtitleRepo struct {
	created []*entity.Subtitle
}

func (r *fakeSubtitleRepo) Create(ctx context.Context, subtitle *entity.Subtitle) error {
	r.created = append(r.created, subtitle)
	return nil
}

func (r *fakeSubtitleRepo) GetByPublicID(ctx context.Context, publicID string) (*entity.Subtitle, error) {
	for _, s := range r.created {
		if s.PublicID == publicID {
			return s, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeSubtitleRepo) ListByVideoID(ctx context.Context, videoID uint) ([]entity.Subtitle, error) {
	return nil, nil
}

func (r *fakeSubtitleRepo) Delete(ctx context.Context, publicID string) error {
	for i, s := range r.created {
		if s.PublicID == publicID {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}
