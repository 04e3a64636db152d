package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type videoRepositoryImpl struct {
	db          *gorm.DB
	invalidator port.CacheInvalidator
}

// NewVideoRepository builds the video store. The invalidator is called after
// every committed mutation, keyed by the video's public id.
func NewVideoRepository(db *gorm.DB, invalidator port.CacheInvalidator) repo.VideoRepository {
	return &videoRepositoryImpl{db: db, invalidator: invalidator}
}

func (r *videoRepositoryImpl) Create(ctx context.Context, video *entity.Video) error {
	if strings.TrimSpace(video.Title) == "" {
		return &gateway.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if video.PublicID == "" {
		return &gateway.ValidationError{Field: "public_id", Reason: "must not be empty"}
	}

	state := video.ProcessingState
	if state == nil {
		state = entity.NewProcessingState(0)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		videoPO := convertor.VideoToPO(video)
		if err := tx.Create(videoPO).Error; err != nil {
			return err
		}
		video.ID = videoPO.ID

		// Every video carries exactly one processing state from birth.
		state.VideoID = videoPO.ID
		statePO := convertor.ProcessingStateToPO(state)
		if err := tx.Create(statePO).Error; err != nil {
			return err
		}
		state.ID = statePO.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &gateway.ValidationError{Field: "public_id", Reason: "already exists"}
		}
		return err
	}

	video.ProcessingState = state
	r.invalidator.Invalidate(ctx, video.PublicID)
	return nil
}

func (r *videoRepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (*entity.Video, error) {
	var videoPO po.VideoPO
	err := r.db.WithContext(ctx).
		Preload("ProcessingState").
		Preload("Formats").
		Preload("Subtitles").
		Where("public_id = ?", publicID).
		Take(&videoPO).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return convertor.VideoToEntity(&videoPO), nil
}

func (r *videoRepositoryImpl) ListByOwner(ctx context.Context, ownerID uint) ([]*entity.Video, error) {
	var pos []po.VideoPO
	err := r.db.WithContext(ctx).
		Preload("ProcessingState").
		Preload("Formats").
		Preload("Subtitles").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
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

// Delete removes the video and every dependent record in one transaction.
// Deleting an unknown public id reports ErrNotFound.
func (r *videoRepositoryImpl) Delete(ctx context.Context, publicID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var videoPO po.VideoPO
		if err := tx.Select("id", "public_id").Where("public_id = ?", publicID).Take(&videoPO).Error; err != nil {
			return translateNotFound(err)
		}
		if err := tx.Where("video_id = ?", videoPO.ID).Delete(&po.VideoFormatPO{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", videoPO.ID).Delete(&po.SubtitlePO{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", videoPO.ID).Delete(&po.ProcessingStatePO{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", videoPO.ID).Delete(&po.PlaylistVideoPO{}).Error; err != nil {
			return err
		}
		return tx.Delete(&videoPO).Error
	})
	if err != nil {
		return err
	}

	r.invalidator.Invalidate(ctx, publicID)
	return nil
}
