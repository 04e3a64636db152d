package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/pkg/logger"
	"video-pipeline-service/pkg/redisclient"
)

const videoKeyPrefix = "video:"

// VideoCache stores serialized public video representations in redis, keyed
// by public video id. Invalidation deletes the key; it never rewrites the
// value, the next read repopulates it.
type VideoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ port.CacheInvalidator = (*VideoCache)(nil)

func NewVideoCache(client *redisclient.Client, ttl time.Duration) *VideoCache {
	return &VideoCache{rdb: client.Raw(), ttl: ttl}
}

// Get unmarshals the cached representation into dest. The boolean reports a
// cache hit; a miss is not an error.
func (c *VideoCache) Get(ctx context.Context, publicVideoID string, dest interface{}) (bool, error) {
	payload, err := c.rdb.Get(ctx, videoKeyPrefix+publicVideoID).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// A corrupt entry behaves like a miss and gets dropped.
		c.Invalidate(ctx, publicVideoID)
		return false, nil
	}
	return true, nil
}

// Set stores the representation with the configured TTL. Cache write failures
// are logged, never propagated; the source of truth already answered.
func (c *VideoCache) Set(ctx context.Context, publicVideoID string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache marshal failed", map[string]interface{}{
			"video_id": publicVideoID,
			"error":    err.Error(),
		})
		return
	}
	if err := c.rdb.Set(ctx, videoKeyPrefix+publicVideoID, payload, c.ttl).Err(); err != nil {
		logger.Warn("cache write failed", map[string]interface{}{
			"video_id": publicVideoID,
			"error":    err.Error(),
		})
	}
}

// Invalidate drops the cached representation of one video. Called by the
// persistence layer after a successful commit touching the video or any of
// its dependent records.
func (c *VideoCache) Invalidate(ctx context.Context, publicVideoID string) {
	if err := c.rdb.Del(ctx, videoKeyPrefix+publicVideoID).Err(); err != nil {
		logger.Warn("cache invalidation failed", map[string]interface{}{
			"video_id": publicVideoID,
			"error":    err.Error(),
		})
	}
}

// NoopInvalidator satisfies port.CacheInvalidator when no cache is wired,
// e.g. in the worker process and in tests.
type NoopInvalidator struct{}

var _ port.CacheInvalidator = NoopInvalidator{}

func (NoopInvalidator) Invalidate(ctx context.Context, publicVideoID string) {}
