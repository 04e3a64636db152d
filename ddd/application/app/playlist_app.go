package app

import (
	"context"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
)

// PlaylistApp manages named collections of videos.
type PlaylistApp interface {
	CreatePlaylist(ctx context.Context, req *cqe.CreatePlaylistCqe) (*dto.PlaylistDTO, error)
	GetPlaylist(ctx context.Context, publicID string) (*dto.PlaylistDTO, error)
	AddVideo(ctx context.Context, playlistPublicID, videoPublicID string) error
	RemoveVideo(ctx context.Context, playlistPublicID, videoPublicID string) error
}

type playlistAppImpl struct {
	playlistRepo repo.PlaylistRepository
	videoRepo    repo.VideoRepository
	backend      gateway.StorageBackend
}

func NewPlaylistApp(playlistRepo repo.PlaylistRepository, videoRepo repo.VideoRepository, backend gateway.StorageBackend) PlaylistApp {
	return &playlistAppImpl{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		backend:      backend,
	}
}

func (a *playlistAppImpl) CreatePlaylist(ctx context.Context, req *cqe.CreatePlaylistCqe) (*dto.PlaylistDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	playlist := entity.NewPlaylist(req.Name, req.OwnerID)
	if err := a.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return &dto.PlaylistDTO{ID: playlist.PublicID, Name: playlist.Name}, nil
}

func (a *playlistAppImpl) GetPlaylist(ctx context.Context, publicID string) (*dto.PlaylistDTO, error) {
	playlist, err := a.playlistRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	videos, err := a.playlistRepo.ListVideos(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}

	d := &dto.PlaylistDTO{
		ID:     playlist.PublicID,
		Name:   playlist.Name,
		Videos: make([]dto.VideoDTO, 0, len(videos)),
	}
	for _, video := range videos {
		d.Videos = append(d.Videos, dto.VideoToDTO(video, a.backend))
	}
	return d, nil
}

func (a *playlistAppImpl) AddVideo(ctx context.Context, playlistPublicID, videoPublicID string) error {
	playlist, video, err := a.resolve(ctx, playlistPublicID, videoPublicID)
	if err != nil {
		return err
	}
	return a.playlistRepo.AddVideo(ctx, playlist.ID, video.ID)
}

func (a *playlistAppImpl) RemoveVideo(ctx context.Context, playlistPublicID, videoPublicID string) error {
	playlist, video, err := a.resolve(ctx, playlistPublicID, videoPublicID)
	if err != nil {
		return err
	}
	return a.playlistRepo.RemoveVideo(ctx, playlist.ID, video.ID)
}

func (a *playlistAppImpl) resolve(ctx context.Context, playlistPublicID, videoPublicID string) (*entity.Playlist, *entity.Video, error) {
	playlist, err := a.playlistRepo.GetByPublicID(ctx, playlistPublicID)
	if err != nil {
		return nil, nil, err
	}
	video, err := a.videoRepo.GetByPublicID(ctx, videoPublicID)
	if err != nil {
		return nil, nil, err
	}
	return playlist, video, nil
}
