package app

import (
	"context"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
)

// SubtitleApp manages subtitle tracks. Subtitles are independent of encode
// jobs; they can be attached and removed at any pipeline stage.
type SubtitleApp interface {
	UploadSubtitle(ctx context.Context, req *cqe.UploadSubtitleCqe) (*dto.SubtitleDTO, error)
	DeleteSubtitle(ctx context.Context, publicVideoID, publicSubtitleID string) error
}

type subtitleAppImpl struct {
	videoRepo    repo.VideoRepository
	subtitleRepo repo.SubtitleRepository
	backend      gateway.StorageBackend
}

func NewSubtitleApp(videoRepo repo.VideoRepository, subtitleRepo repo.SubtitleRepository, backend gateway.StorageBackend) SubtitleApp {
	return &subtitleAppImpl{
		videoRepo:    videoRepo,
		subtitleRepo: subtitleRepo,
		backend:      backend,
	}
}

func (a *subtitleAppImpl) UploadSubtitle(ctx context.Context, req *cqe.UploadSubtitleCqe) (*dto.SubtitleDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	video, err := a.videoRepo.GetByPublicID(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	subtitle := entity.NewSubtitle(video.ID, req.Language)
	if err := a.backend.UploadSubtitle(ctx, video.PublicID, subtitle.PublicID, subtitle.Language, req.Content); err != nil {
		return nil, err
	}
	if err := a.subtitleRepo.Create(ctx, subtitle); err != nil {
		return nil, err
	}

	return &dto.SubtitleDTO{
		ID:       subtitle.PublicID,
		Language: subtitle.Language,
		URL:      a.backend.SubtitleURL(video.PublicID, subtitle.PublicID, subtitle.Language),
	}, nil
}

func (a *subtitleAppImpl) DeleteSubtitle(ctx context.Context, publicVideoID, publicSubtitleID string) error {
	subtitle, err := a.subtitleRepo.GetByPublicID(ctx, publicSubtitleID)
	if err != nil {
		return err
	}

	if err := a.subtitleRepo.Delete(ctx, subtitle.PublicID); err != nil {
		return err
	}
	// Storage removal covers every stored language variant of the track.
	return a.backend.DeleteSubtitle(ctx, publicVideoID, subtitle.PublicID)
}
