package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type subtitleRepositoryImpl struct {
	db          *gorm.DB
	invalidator port.CacheInvalidator
}

func NewSubtitleRepository(db *gorm.DB, invalidator port.CacheInvalidator) repo.SubtitleRepository {
	return &subtitleRepositoryImpl{db: db, invalidator: invalidator}
}

func (r *subtitleRepositoryImpl) Create(ctx context.Context, subtitle *entity.Subtitle) error {
	subtitlePO := convertor.SubtitleToPO(subtitle)
	if err := r.db.WithContext(ctx).Create(subtitlePO).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &gateway.ValidationError{Field: "public_id", Reason: "already exists"}
		}
		return err
	}
	subtitle.ID = subtitlePO.ID

	if publicID, lookupErr := publicVideoID(ctx, r.db, subtitle.VideoID); lookupErr == nil {
		r.invalidator.Invalidate(ctx, publicID)
	}
	return nil
}

func (r *subtitleRepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (*entity.Subtitle, error) {
	var subtitlePO po.SubtitlePO
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).Take(&subtitlePO).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	subtitle := convertor.SubtitleToEntity(&subtitlePO)
	return &subtitle, nil
}

func (r *subtitleRepositoryImpl) ListByVideoID(ctx context.Context, videoID uint) ([]entity.Subtitle, error) {
	var pos []po.SubtitlePO
	err := r.db.WithContext(ctx).Where("video_id = ?", videoID).Order("created_at").Find(&pos).Error
	if err != nil {
		return nil, err
	}

	subtitles := make([]entity.Subtitle, 0, len(pos))
	for i := range pos {
		subtitles = append(subtitles, convertor.SubtitleToEntity(&pos[i]))
	}
	return subtitles, nil
}

func (r *subtitleRepositoryImpl) Delete(ctx context.Context, publicID string) error {
	var subtitlePO po.SubtitlePO
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).Take(&subtitlePO).Error
	if err != nil {
		return translateNotFound(err)
	}

	if err := r.db.WithContext(ctx).Delete(&subtitlePO).Error; err != nil {
		return err
	}

	if videoPublicID, lookupErr := publicVideoID(ctx, r.db, subtitlePO.VideoID); lookupErr == nil {
		r.invalidator.Invalidate(ctx, videoPublicID)
	}
	return nil
}
