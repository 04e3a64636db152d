package persistence

import (
	"context"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type formatRepositoryImpl struct {
	db          *gorm.DB
	invalidator port.CacheInvalidator
}

func NewFormatRepository(db *gorm.DB, invalidator port.CacheInvalidator) repo.FormatRepository {
	return &formatRepositoryImpl{db: db, invalidator: invalidator}
}

// ReplaceForVideo swaps the recorded renditions for what storage reports.
// The set is authoritative: stale rows from an earlier run are dropped.
func (r *formatRepositoryImpl) ReplaceForVideo(ctx context.Context, videoID uint, formats []entity.VideoFormat) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&po.VideoFormatPO{}).Error; err != nil {
			return err
		}
		for i := range formats {
			formatPO := convertor.FormatToPO(videoID, &formats[i])
			formatPO.ID = 0
			if err := tx.Create(formatPO).Error; err != nil {
				return err
			}
			formats[i].ID = formatPO.ID
			formats[i].VideoID = videoID
		}
		return nil
	})
	if err != nil {
		return err
	}

	if publicID, lookupErr := publicVideoID(ctx, r.db, videoID); lookupErr == nil {
		r.invalidator.Invalidate(ctx, publicID)
	}
	return nil
}

func (r *formatRepositoryImpl) ListByVideoID(ctx context.Context, videoID uint) ([]entity.VideoFormat, error) {
	var pos []po.VideoFormatPO
	err := r.db.WithContext(ctx).Where("video_id = ?", videoID).Order("name").Find(&pos).Error
	if err != nil {
		return nil, err
	}

	formats := make([]entity.VideoFormat, 0, len(pos))
	for i := range pos {
		formats = append(formats, convertor.FormatToEntity(&pos[i]))
	}
	return formats, nil
}
