package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
)

func newUploadFixture() (*uploadAppImpl, *fakeUrlRepo, *fakeVideoRepo, *fakeBackend, *fakePublisher) {
	urlRepo := newFakeUrlRepo()
	videoRepo := newFakeVideoRepo()
	backend := newFakeBackend()
	publisher := &fakePublisher{}
	app := NewUploadApp(urlRepo, videoRepo, newFakePlaylistRepo(), backend, publisher).(*uploadAppImpl)
	return app, urlRepo, videoRepo, backend, publisher
}

func TestCreateUploadURL(t *testing.T) {
	app, urlRepo, _, _, _ := newUploadFixture()

	d, err := app.CreateUploadURL(context.Background(), &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)
	assert.NotEmpty(t, d.VideoID)
	assert.Greater(t, d.ExpiresAt, time.Now().Unix())

	ticket, err := urlRepo.GetByPublicVideoID(context.Background(), d.VideoID)
	require.NoError(t, err)
	assert.False(t, ticket.WasUsed)
}

func TestCreateUploadURLValidation(t *testing.T) {
	app, _, _, _, _ := newUploadFixture()

	_, err := app.CreateUploadURL(context.Background(), &cqe.CreateUploadURLCqe{OwnerID: 0, TTLSeconds: 3600})
	var validation *gateway.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "owner_id", validation.Field)
}

func TestCompleteUpload(t *testing.T) {
	app, urlRepo, videoRepo, backend, publisher := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	d, err := app.CompleteUpload(ctx, &cqe.CompleteUploadCqe{VideoID: issued.VideoID, Filename: "movie.mp4"}, strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, issued.VideoID, d.ID)
	assert.Equal(t, "movie", d.Title)
	assert.Equal(t, "pending", d.Processing.Status)

	assert.Equal(t, "bytes", backend.uploads[issued.VideoID+"/movie.mp4"])
	assert.Equal(t, []string{issued.VideoID}, publisher.published)

	ticket, err := urlRepo.GetByPublicVideoID(ctx, issued.VideoID)
	require.NoError(t, err)
	assert.True(t, ticket.WasUsed)
	assert.Equal(t, "movie.mp4", ticket.Filename)

	video, err := videoRepo.GetByPublicID(ctx, issued.VideoID)
	require.NoError(t, err)
	assert.NotNil(t, video.ProcessingState)
}

func TestCompleteUploadExpiredTicket(t *testing.T) {
	app, urlRepo, _, _, _ := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	ticket, err := urlRepo.GetByPublicVideoID(ctx, issued.VideoID)
	require.NoError(t, err)
	ticket.ExpiresAt = time.Now().Unix() - 10

	_, err = app.CompleteUpload(ctx, &cqe.CompleteUploadCqe{VideoID: issued.VideoID, Filename: "movie.mp4"}, strings.NewReader("bytes"))
	var validation *gateway.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Reason, "expired")
}

func TestCompleteUploadSlowTransferFinishesAfterExpiry(t *testing.T) {
	app, urlRepo, _, backend, _ := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 1})
	require.NoError(t, err)
	ticket, err := urlRepo.GetByPublicVideoID(ctx, issued.VideoID)
	require.NoError(t, err)

	// The expiry check sees the upload start; by the time bytes finish
	// streaming the ticket may be past expires_at, which must not matter.
	slow := &oneShotReader{fn: func(p []byte) (int, error) {
		ticket.ExpiresAt = time.Now().Unix() - 100
		return copy(p, "x"), nil
	}}

	_, err = app.CompleteUpload(ctx, &cqe.CompleteUploadCqe{VideoID: issued.VideoID, Filename: "movie.mp4"}, slow)
	require.NoError(t, err)
	assert.Equal(t, "x", backend.uploads[issued.VideoID+"/movie.mp4"])
}

func TestCompleteUploadTicketReuseRejected(t *testing.T) {
	app, _, _, _, _ := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	_, err = app.CompleteUpload(ctx, &cqe.CompleteUploadCqe{VideoID: issued.VideoID, Filename: "a.mp4"}, strings.NewReader("1"))
	require.NoError(t, err)

	_, err = app.CompleteUpload(ctx, &cqe.CompleteUploadCqe{VideoID: issued.VideoID, Filename: "b.mp4"}, strings.NewReader("2"))
	var validation *gateway.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCompleteUploadUnknownTicket(t *testing.T) {
	app, _, _, _, _ := newUploadFixture()

	_, err := app.CompleteUpload(context.Background(), &cqe.CompleteUploadCqe{VideoID: "nope", Filename: "a.mp4"}, strings.NewReader("1"))
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCheckUploadStampsTicket(t *testing.T) {
	app, urlRepo, _, _, _ := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	used, err := app.CheckUpload(ctx, issued.VideoID)
	require.NoError(t, err)
	assert.False(t, used)

	ticket, err := urlRepo.GetByPublicVideoID(ctx, issued.VideoID)
	require.NoError(t, err)
	require.NotNil(t, ticket.LastCheckedAt)
}

func TestCollectExpired(t *testing.T) {
	app, urlRepo, _, _, _ := newUploadFixture()
	ctx := context.Background()

	stale, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)
	fresh, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	ticket, err := urlRepo.GetByPublicVideoID(ctx, stale.VideoID)
	require.NoError(t, err)
	ticket.ExpiresAt = time.Now().Add(-2 * time.Hour).Unix()

	deleted, err := app.CollectExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = urlRepo.GetByPublicVideoID(ctx, stale.VideoID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = urlRepo.GetByPublicVideoID(ctx, fresh.VideoID)
	assert.NoError(t, err)
}

func TestCollectExpiredSparesRecentlyChecked(t *testing.T) {
	app, urlRepo, _, _, _ := newUploadFixture()
	ctx := context.Background()

	issued, err := app.CreateUploadURL(ctx, &cqe.CreateUploadURLCqe{OwnerID: 1, TTLSeconds: 3600})
	require.NoError(t, err)

	ticket, err := urlRepo.GetByPublicVideoID(ctx, issued.VideoID)
	require.NoError(t, err)
	ticket.ExpiresAt = time.Now().Add(-2 * time.Hour).Unix()
	ticket.MarkChecked(time.Now())

	deleted, err := app.CollectExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "movie", titleFromFilename("movie.mp4"))
	assert.Equal(t, "archive.tar", titleFromFilename("archive.tar.gz"))
	assert.Equal(t, "noext", titleFromFilename("noext"))
	assert.Equal(t, ".hidden", titleFromFilename(".hidden"))
}

// oneShotReader yields the result of fn once, then EOF.
type oneShotReader struct {
	fn   func(p []byte) (int, error)
	done bool
}

func (r *oneShotReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	return r.fn(p)
}
