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

type processingStateRepositoryImpl struct {
	db          *gorm.DB
	invalidator port.CacheInvalidator
}

func NewProcessingStateRepository(db *gorm.DB, invalidator port.CacheInvalidator) repo.ProcessingStateRepository {
	return &processingStateRepositoryImpl{db: db, invalidator: invalidator}
}

func (r *processingStateRepositoryImpl) GetByVideoID(ctx context.Context, videoID uint) (*entity.ProcessingState, error) {
	var statePO po.ProcessingStatePO
	err := r.db.WithContext(ctx).Where("video_id = ?", videoID).Take(&statePO).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return convertor.ProcessingStateToEntity(&statePO), nil
}

func (r *processingStateRepositoryImpl) Save(ctx context.Context, state *entity.ProcessingState) error {
	statePO := convertor.ProcessingStateToPO(state)

	var err error
	if statePO.ID == 0 {
		err = r.db.WithContext(ctx).Create(statePO).Error
		state.ID = statePO.ID
	} else {
		err = r.db.WithContext(ctx).Save(statePO).Error
	}
	if err != nil {
		return err
	}

	// State transitions change the public representation, so the cached copy
	// must go.
	if publicID, lookupErr := publicVideoID(ctx, r.db, state.VideoID); lookupErr == nil {
		r.invalidator.Invalidate(ctx, publicID)
	}
	return nil
}
