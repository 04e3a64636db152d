package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

// AutoMigrate creates or updates the pipeline tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&po.VideoPO{},
		&po.ProcessingStatePO{},
		&po.VideoFormatPO{},
		&po.SubtitlePO{},
		&po.VideoUploadUrlPO{},
		&po.PlaylistPO{},
		&po.PlaylistVideoPO{},
	)
}

// translateNotFound maps gorm's sentinel onto the repository contract.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	return err
}

// publicVideoID resolves the public id of an internal video id, used to key
// cache invalidation from repositories that only hold the internal id.
func publicVideoID(ctx context.Context, db *gorm.DB, videoID uint) (string, error) {
	var publicID string
	err := db.WithContext(ctx).
		Model(&po.VideoPO{}).
		Select("public_id").
		Where("id = ?", videoID).
		Take(&publicID).Error
	if err != nil {
		return "", translateNotFound(err)
	}
	return publicID, nil
}
