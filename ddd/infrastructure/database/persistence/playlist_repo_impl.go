package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type playlistRepositoryImpl struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) repo.PlaylistRepository {
	return &playlistRepositoryImpl{db: db}
}

func (r *playlistRepositoryImpl) Create(ctx context.Context, playlist *entity.Playlist) error {
	playlistPO := convertor.PlaylistToPO(playlist)
	if err := r.db.WithContext(ctx).Create(playlistPO).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &gateway.ValidationError{Field: "public_id", Reason: "already exists"}
		}
		return err
	}
	playlist.ID = playlistPO.ID
	return nil
}

func (r *playlistRepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (*entity.Playlist, error) {
	var playlistPO po.PlaylistPO
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).Take(&playlistPO).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return convertor.PlaylistToEntity(&playlistPO), nil
}

// AddVideo is idempotent; adding an existing membership changes nothing.
func (r *playlistRepositoryImpl) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	membership := po.PlaylistVideoPO{PlaylistID: playlistID, VideoID: videoID}
	err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		FirstOrCreate(&membership).Error
	return err
}

func (r *playlistRepositoryImpl) RemoveVideo(ctx context.Context, playlistID, videoID uint) error {
	return r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&po.PlaylistVideoPO{}).Error
}

func (r *playlistRepositoryImpl) ListVideos(ctx context.Context, playlistID uint) ([]*entity.Video, error) {
	var pos []po.VideoPO
	err := r.db.WithContext(ctx).
		Joins("JOIN playlist_videos ON playlist_videos.video_id = videos.id").
		Where("playlist_videos.playlist_id = ?", playlistID).
		Preload("ProcessingState").
		Preload("Formats").
		Preload("Subtitles").
		Order("playlist_videos.created_at").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	videos := make([]*entity.Video, 0, len(pos))
	for i := range pos {
		videos = append(videos, convertor.VideoToEntity(&pos[i]))
	}
	return videos, nil
}
