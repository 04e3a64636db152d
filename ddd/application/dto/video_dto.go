package dto

import (
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
)

// VideoDTO is the public representation of a video. This is the shape cached
// in redis and returned by the API.
type VideoDTO struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Processing   ProcessingDTO `json:"processing"`
	Formats      []FormatDTO   `json:"formats"`
	Subtitles    []SubtitleDTO `json:"subtitles"`
	Thumbnail    string        `json:"thumbnail"`
	PosterFrames string        `json:"poster_frames"`
}

// ProcessingDTO is the pipeline position of a video.
type ProcessingDTO struct {
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	StartedAt string  `json:"started_at"`
	Message   string  `json:"message,omitempty"`
}

// FormatDTO is one playable rendition.
type FormatDTO struct {
	Name    string `json:"name"`
	Bitrate int64  `json:"bitrate"`
	URL     string `json:"url"`
}

// SubtitleDTO is one subtitle track.
type SubtitleDTO struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	URL      string `json:"url"`
}

// UploadURLDTO is a freshly issued upload ticket.
type UploadURLDTO struct {
	VideoID   string `json:"video_id"`
	ExpiresAt int64  `json:"expires_at"`
	Origin    string `json:"origin,omitempty"`
}

// PlaylistDTO is the public representation of a playlist.
type PlaylistDTO struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Videos []VideoDTO `json:"videos,omitempty"`
}

// VideoToDTO projects a video entity onto its public representation. URL
// fields are derived from the storage backend; no I/O happens here.
func VideoToDTO(video *entity.Video, backend gateway.StorageBackend) VideoDTO {
	d := VideoDTO{
		ID:           video.PublicID,
		Title:        video.Title,
		Thumbnail:    backend.ThumbnailURL(video.PublicID, video.PublicThumbnailID),
		PosterFrames: backend.PosterFramesURL(video.PublicID, video.PublicPosterFramesID),
		Formats:      make([]FormatDTO, 0, len(video.Formats)),
		Subtitles:    make([]SubtitleDTO, 0, len(video.Subtitles)),
	}
	if video.ProcessingState != nil {
		d.Processing = ProcessingDTO{
			Status:    string(video.ProcessingState.Status),
			Progress:  video.ProcessingState.Progress,
			StartedAt: video.ProcessingState.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Message:   video.ProcessingState.Message,
		}
	}
	for _, f := range video.Formats {
		d.Formats = append(d.Formats, FormatDTO{
			Name:    f.Name,
			Bitrate: f.Bitrate,
			URL:     backend.VideoURL(video.PublicID, f.Name),
		})
	}
	for _, s := range video.Subtitles {
		d.Subtitles = append(d.Subtitles, SubtitleDTO{
			ID:       s.PublicID,
			Language: s.Language,
			URL:      backend.SubtitleURL(video.PublicID, s.PublicID, s.Language),
		})
	}
	return d
}
