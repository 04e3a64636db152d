package gateway

import (
	"context"
	"io"
	"iter"
)

// Format describes one rendition currently present on storage. Bitrate is the
// parsed video bitrate plus the parsed audio bitrate of the producing preset.
type Format struct {
	Name    string
	Bitrate int64
}

// JobHandle is an opaque reference to a submitted asynchronous encode job.
// Handles are polled; they never block.
type JobHandle interface {
	ID() string
	IsDone() bool
	IsSuccessful() bool
	// Progress reports the job's last known percentage (0-100).
	Progress() int
	// Err returns the job failure, nil while running or after success.
	Err() error
}

// StorageBackend is the contract for storing video sources, renditions,
// subtitles, thumbnails and poster frames. Implementations confine side
// effects to their storage namespace; URL methods never perform I/O.
type StorageBackend interface {
	// UploadVideo persists the raw uploaded source bytes under the video's
	// namespace. Content is streamed; implementations must not buffer the
	// whole file in memory.
	UploadVideo(ctx context.Context, videoID string, src io.Reader, filename string) error

	// DeleteVideo removes the source and every derived artifact under the
	// video's namespace. Deleting a video that has no stored assets is a
	// no-op.
	DeleteVideo(ctx context.Context, videoID string) error

	VideoURL(videoID, formatName string) string

	UploadSubtitle(ctx context.Context, videoID, subtitleID, languageCode, content string) error

	// DeleteSubtitle removes every language variant stored for the subtitle id.
	DeleteSubtitle(ctx context.Context, videoID, subtitleID string) error

	SubtitleURL(videoID, subtitleID, languageCode string) string

	UploadThumbnail(ctx context.Context, videoID, thumbID string, src io.Reader) error

	DeleteThumbnail(ctx context.Context, videoID, thumbID string) error

	ThumbnailURL(videoID, thumbID string) string

	PosterFramesURL(videoID, posterID string) string

	// StartTranscoding submits one encode job per configured preset and
	// returns their handles. It fails with SourceNotFoundError when no
	// uploaded source exists for the video.
	StartTranscoding(ctx context.Context, videoID string) ([]JobHandle, error)

	// CheckProgress reports (progress, done) for a job handle. A failed job
	// surfaces as a TranscodingFailedError carrying the job's error payload.
	CheckProgress(ctx context.Context, handle JobHandle) (int, bool, error)

	// IterFormats lazily enumerates the renditions that currently exist on
	// storage for the video.
	IterFormats(ctx context.Context, videoID string) iter.Seq[Format]

	// CreateThumbnail synchronously extracts the frame at timestamp zero of
	// the configured thumbnail preset's rendition.
	CreateThumbnail(ctx context.Context, videoID, thumbID string) error

	// CreatePosterFrames samples the source every ten seconds into a sprite
	// image set plus a cue file mapping intervals to image fragments.
	CreatePosterFrames(ctx context.Context, videoID, posterID string) error
}
