package app

import (
	"context"

	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/pkg/logger"
)

// VideoCacheReader is the read/write surface of the representation cache.
// Invalidation lives behind port.CacheInvalidator in the persistence layer.
type VideoCacheReader interface {
	Get(ctx context.Context, publicVideoID string, dest interface{}) (bool, error)
	Set(ctx context.Context, publicVideoID string, value interface{})
}

// VideoApp serves the public video surface.
type VideoApp interface {
	// GetVideo returns the public representation, reading through the cache.
	GetVideo(ctx context.Context, publicVideoID string) (*dto.VideoDTO, error)
	// ListVideos returns the owner's videos, newest first. Never cached.
	ListVideos(ctx context.Context, ownerID uint) ([]dto.VideoDTO, error)
	// DeleteVideo removes the records and every stored asset.
	DeleteVideo(ctx context.Context, publicVideoID string) error
	// RestartProcessing marks a failed video for a new pipeline run and
	// publishes the encode request.
	RestartProcessing(ctx context.Context, publicVideoID string) error
}

type videoAppImpl struct {
	videoRepo repo.VideoRepository
	stateRepo repo.ProcessingStateRepository
	backend   gateway.StorageBackend
	publisher port.EncodeRequestPublisher
	cache     VideoCacheReader
}

// NewVideoApp wires the video application service. cache may be nil when no
// redis is available; reads then always hit the database.
func NewVideoApp(
	videoRepo repo.VideoRepository,
	stateRepo repo.ProcessingStateRepository,
	backend gateway.StorageBackend,
	publisher port.EncodeRequestPublisher,
	cache VideoCacheReader,
) VideoApp {
	return &videoAppImpl{
		videoRepo: videoRepo,
		stateRepo: stateRepo,
		backend:   backend,
		publisher: publisher,
		cache:     cache,
	}
}

func (a *videoAppImpl) GetVideo(ctx context.Context, publicVideoID string) (*dto.VideoDTO, error) {
	if a.cache != nil {
		var cached dto.VideoDTO
		hit, err := a.cache.Get(ctx, publicVideoID, &cached)
		if err != nil {
			logger.Warn("cache read failed", map[string]interface{}{
				"video_id": publicVideoID,
				"error":    err.Error(),
			})
		} else if hit {
			return &cached, nil
		}
	}

	video, err := a.videoRepo.GetByPublicID(ctx, publicVideoID)
	if err != nil {
		return nil, err
	}

	d := dto.VideoToDTO(video, a.backend)
	if a.cache != nil {
		a.cache.Set(ctx, publicVideoID, d)
	}
	return &d, nil
}

func (a *videoAppImpl) ListVideos(ctx context.Context, ownerID uint) ([]dto.VideoDTO, error) {
	videos, err := a.videoRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.VideoDTO, 0, len(videos))
	for _, video := range videos {
		dtos = append(dtos, dto.VideoToDTO(video, a.backend))
	}
	return dtos, nil
}

// DeleteVideo drops the records first so the video disappears from the API
// immediately, then clears storage. Both halves are idempotent on the storage
// side.
func (a *videoAppImpl) DeleteVideo(ctx context.Context, publicVideoID string) error {
	if err := a.videoRepo.Delete(ctx, publicVideoID); err != nil {
		return err
	}
	if err := a.backend.DeleteVideo(ctx, publicVideoID); err != nil {
		// Records are gone; orphaned files are logged, not resurrected.
		logger.Error("storage cleanup failed after video deletion", map[string]interface{}{
			"video_id": publicVideoID,
			"error":    err.Error(),
		})
		return err
	}
	return nil
}

func (a *videoAppImpl) RestartProcessing(ctx context.Context, publicVideoID string) error {
	video, err := a.videoRepo.GetByPublicID(ctx, publicVideoID)
	if err != nil {
		return err
	}

	state, err := a.stateRepo.GetByVideoID(ctx, video.ID)
	if err != nil {
		return err
	}
	state.SetRestart()
	if err := a.stateRepo.Save(ctx, state); err != nil {
		return err
	}

	return a.publisher.PublishEncodeRequest(ctx, publicVideoID)
}
