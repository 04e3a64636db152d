package port

import (
	"context"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
)

// JobDispatcher accepts encode jobs for asynchronous execution and returns
// pollable handles. Submission is fire-and-forget; nothing blocks on encoder
// completion.
type JobDispatcher interface {
	Submit(ctx context.Context, job *entity.EncodeJob) (gateway.JobHandle, error)
}

// EncodeRequestPublisher hands an encode request to the worker process.
type EncodeRequestPublisher interface {
	PublishEncodeRequest(ctx context.Context, publicVideoID string) error
}

// CacheInvalidator drops the cached public representation of a video. The
// call carries no payload, only the owning video's public id.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, publicVideoID string)
}
