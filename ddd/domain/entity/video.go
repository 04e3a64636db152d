package entity

import (
	"time"

	"video-pipeline-service/pkg/randomid"
)

// Video is the identity entity of the pipeline. Its public ids are generated
// once at creation and never change while the record exists.
type Video struct {
	ID                   uint
	PublicID             string
	PublicThumbnailID    string
	PublicPosterFramesID string
	Title                string
	OwnerID              uint
	CreatedAt            time.Time
	UpdatedAt            time.Time

	ProcessingState *ProcessingState
	Formats         []VideoFormat
	Subtitles       []Subtitle
}

// NewVideo builds a video with freshly generated public ids. publicID may be
// pre-allocated (upload-url flow); when empty a new one is generated.
func NewVideo(publicID, title string, ownerID uint) *Video {
	if publicID == "" {
		publicID = randomid.NewShort()
	}
	return &Video{
		PublicID:             publicID,
		PublicThumbnailID:    randomid.NewLong(),
		PublicPosterFramesID: randomid.NewLong(),
		Title:                title,
		OwnerID:              ownerID,
	}
}

// VideoFormat is one successfully produced rendition.
type VideoFormat struct {
	ID        uint
	VideoID   uint
	Name      string
	Bitrate   int64
	CreatedAt time.Time
}

// Subtitle is a user- or pipeline-supplied subtitle track, independent of
// encoding jobs.
type Subtitle struct {
	ID        uint
	VideoID   uint
	PublicID  string
	Language  string
	CreatedAt time.Time
}

// NewSubtitle allocates a public id for a subtitle track.
func NewSubtitle(videoID uint, language string) *Subtitle {
	return &Subtitle{
		VideoID:  videoID,
		PublicID: randomid.NewShort(),
		Language: language,
	}
}

// Playlist is a named collection of videos owned by a user. It has no
// encoding-related behavior.
type Playlist struct {
	ID        uint
	PublicID  string
	Name      string
	OwnerID   uint
	CreatedAt time.Time
}

// NewPlaylist allocates a public id for a playlist.
func NewPlaylist(name string, ownerID uint) *Playlist {
	return &Playlist{
		PublicID: randomid.NewShort(),
		Name:     name,
		OwnerID:  ownerID,
	}
}
