package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type uploadUrlRepositoryImpl struct {
	db *gorm.DB
}

// NewUploadUrlRepository builds the upload ticket store. Tickets have no
// public representation of their own, so no cache invalidation is wired.
func NewUploadUrlRepository(db *gorm.DB) repo.UploadUrlRepository {
	return &uploadUrlRepositoryImpl{db: db}
}

func (r *uploadUrlRepositoryImpl) Create(ctx context.Context, url *entity.VideoUploadUrl) error {
	urlPO := convertor.UploadUrlToPO(url)
	if err := r.db.WithContext(ctx).Create(urlPO).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &gateway.ValidationError{Field: "public_video_id", Reason: "already exists"}
		}
		return err
	}
	url.ID = urlPO.ID
	return nil
}

func (r *uploadUrlRepositoryImpl) GetByPublicVideoID(ctx context.Context, publicVideoID string) (*entity.VideoUploadUrl, error) {
	var urlPO po.VideoUploadUrlPO
	err := r.db.WithContext(ctx).Where("public_video_id = ?", publicVideoID).Take(&urlPO).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return convertor.UploadUrlToEntity(&urlPO), nil
}

func (r *uploadUrlRepositoryImpl) Save(ctx context.Context, url *entity.VideoUploadUrl) error {
	return r.db.WithContext(ctx).Save(convertor.UploadUrlToPO(url)).Error
}

// DeleteExpired drops tickets that expired before now, were never used, and
// were last inspected longer than grace ago. A ticket checked recently is
// kept so an in-flight client still gets a definite answer.
func (r *uploadUrlRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now.Unix()).
		Where("was_used = ?", false).
		Where("last_checked_at IS NULL OR last_checked_at < ?", now.Add(-grace)).
		Delete(&po.VideoUploadUrlPO{})
	return res.RowsAffected, res.Error
}
