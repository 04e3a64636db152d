package repo

import (
	"context"
	"errors"
	"time"

	"video-pipeline-service/ddd/domain/entity"
)

// ErrNotFound is returned by lookups for records that do not exist.
var ErrNotFound = errors.New("record not found")

// VideoRepository persists videos and their derived records. Creating a video
// also creates its processing state; deleting one cascades to formats,
// subtitles and the processing state.
type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	GetByPublicID(ctx context.Context, publicID string) (*entity.Video, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*entity.Video, error)
	Delete(ctx context.Context, publicID string) error
}

// ProcessingStateRepository persists state machine transitions.
type ProcessingStateRepository interface {
	GetByVideoID(ctx context.Context, videoID uint) (*entity.ProcessingState, error)
	Save(ctx context.Context, state *entity.ProcessingState) error
}

// FormatRepository persists produced renditions.
type FormatRepository interface {
	ReplaceForVideo(ctx context.Context, videoID uint, formats []entity.VideoFormat) error
	ListByVideoID(ctx context.Context, videoID uint) ([]entity.VideoFormat, error)
}

// SubtitleRepository persists subtitle tracks.
type SubtitleRepository interface {
	Create(ctx context.Context, subtitle *entity.Subtitle) error
	GetByPublicID(ctx context.Context, publicID string) (*entity.Subtitle, error)
	ListByVideoID(ctx context.Context, videoID uint) ([]entity.Subtitle, error)
	Delete(ctx context.Context, publicID string) error
}

// UploadUrlRepository persists upload tickets.
type UploadUrlRepository interface {
	Create(ctx context.Context, url *entity.VideoUploadUrl) error
	GetByPublicVideoID(ctx context.Context, publicVideoID string) (*entity.VideoUploadUrl, error)
	Save(ctx context.Context, url *entity.VideoUploadUrl) error
	// DeleteExpired garbage-collects tickets that expired before now, were
	// never used, and were last checked longer than grace ago.
	DeleteExpired(ctx context.Context, now time.Time, grace time.Duration) (int64, error)
}

// PlaylistRepository persists playlists and their video memberships.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *entity.Playlist) error
	GetByPublicID(ctx context.Context, publicID string) (*entity.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint) error
	ListVideos(ctx context.Context, playlistID uint) ([]*entity.Video, error)
}
