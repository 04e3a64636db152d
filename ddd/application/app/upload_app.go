package app

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/pkg/logger"
)

// UploadApp issues upload tickets and turns completed uploads into videos.
type UploadApp interface {
	// CreateUploadURL pre-allocates a public video id valid for the given TTL.
	CreateUploadURL(ctx context.Context, req *cqe.CreateUploadURLCqe) (*dto.UploadURLDTO, error)

	// CompleteUpload stores the source, creates the video record, claims the
	// ticket and publishes the encode request. The expiry check happens here,
	// at upload start; a slow transfer that began in time is never rejected.
	CompleteUpload(ctx context.Context, req *cqe.CompleteUploadCqe, src io.Reader) (*dto.VideoDTO, error)

	// CheckUpload reports whether the ticket's video exists yet and stamps
	// the ticket as recently inspected so the janitor leaves it alone.
	CheckUpload(ctx context.Context, publicVideoID string) (bool, error)

	// CollectExpired garbage-collects stale unused tickets.
	CollectExpired(ctx context.Context, grace time.Duration) (int64, error)
}

type uploadAppImpl struct {
	urlRepo      repo.UploadUrlRepository
	videoRepo    repo.VideoRepository
	playlistRepo repo.PlaylistRepository
	backend      gateway.StorageBackend
	publisher    port.EncodeRequestPublisher
	now          func() time.Time
}

func NewUploadApp(
	urlRepo repo.UploadUrlRepository,
	videoRepo repo.VideoRepository,
	playlistRepo repo.PlaylistRepository,
	backend gateway.StorageBackend,
	publisher port.EncodeRequestPublisher,
) UploadApp {
	return &uploadAppImpl{
		urlRepo:      urlRepo,
		videoRepo:    videoRepo,
		playlistRepo: playlistRepo,
		backend:      backend,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (a *uploadAppImpl) CreateUploadURL(ctx context.Context, req *cqe.CreateUploadURLCqe) (*dto.UploadURLDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ticket := entity.NewVideoUploadUrl(req.OwnerID, a.now().Unix()+req.TTLSeconds)
	ticket.Origin = req.Origin
	ticket.PlaylistID = req.PlaylistID
	if err := a.urlRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	logger.Info("upload url issued", map[string]interface{}{
		"video_id":   ticket.PublicVideoID,
		"owner_id":   req.OwnerID,
		"expires_at": ticket.ExpiresAt,
	})
	return &dto.UploadURLDTO{
		VideoID:   ticket.PublicVideoID,
		ExpiresAt: ticket.ExpiresAt,
		Origin:    ticket.Origin,
	}, nil
}

func (a *uploadAppImpl) CompleteUpload(ctx context.Context, req *cqe.CompleteUploadCqe, src io.Reader) (*dto.VideoDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ticket, err := a.urlRepo.GetByPublicVideoID(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}
	if !ticket.CanStartUpload(a.now()) {
		return nil, &gateway.ValidationError{Field: "video_id", Reason: "upload url expired or already used"}
	}

	filename := filepath.Base(req.Filename)
	if err := a.backend.UploadVideo(ctx, ticket.PublicVideoID, src, filename); err != nil {
		return nil, err
	}

	video := entity.NewVideo(ticket.PublicVideoID, titleFromFilename(filename), ticket.OwnerID)
	if err := a.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}

	ticket.MarkUsed(filename)
	if err := a.urlRepo.Save(ctx, ticket); err != nil {
		return nil, err
	}

	if ticket.PlaylistID != nil {
		if err := a.playlistRepo.AddVideo(ctx, *ticket.PlaylistID, video.ID); err != nil {
			logger.Warn("playlist attach failed", map[string]interface{}{
				"video_id":    video.PublicID,
				"playlist_id": *ticket.PlaylistID,
				"error":       err.Error(),
			})
		}
	}

	if err := a.publisher.PublishEncodeRequest(ctx, video.PublicID); err != nil {
		// The video exists and can be re-driven via restart; the failed
		// publish must not undo the upload.
		logger.Error("encode request publish failed", map[string]interface{}{
			"video_id": video.PublicID,
			"error":    err.Error(),
		})
	}

	d := dto.VideoToDTO(video, a.backend)
	return &d, nil
}

func (a *uploadAppImpl) CheckUpload(ctx context.Context, publicVideoID string) (bool, error) {
	ticket, err := a.urlRepo.GetByPublicVideoID(ctx, publicVideoID)
	if err != nil {
		return false, err
	}

	ticket.MarkChecked(a.now())
	if err := a.urlRepo.Save(ctx, ticket); err != nil {
		return false, err
	}
	return ticket.WasUsed, nil
}

func (a *uploadAppImpl) CollectExpired(ctx context.Context, grace time.Duration) (int64, error) {
	deleted, err := a.urlRepo.DeleteExpired(ctx, a.now(), grace)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info("expired upload urls collected", map[string]interface{}{
			"count": deleted,
		})
	}
	return deleted, nil
}

// titleFromFilename derives the initial video title from the uploaded file
// name, extension stripped.
func titleFromFilename(filename string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	if title == "" {
		return filename
	}
	return title
}
