package cqe

import (
	"strings"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/vo"
)

// CreateUploadURLCqe requests a new upload ticket.
type CreateUploadURLCqe struct {
	OwnerID    uint   `json:"owner_id"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Origin     string `json:"origin"`
	PlaylistID *uint  `json:"playlist_id"`
}

func (c *CreateUploadURLCqe) Validate() error {
	if c.OwnerID == 0 {
		return &gateway.ValidationError{Field: "owner_id", Reason: "must not be zero"}
	}
	if c.TTLSeconds <= 0 {
		return &gateway.ValidationError{Field: "ttl_seconds", Reason: "must be positive"}
	}
	return nil
}

// CompleteUploadCqe finalizes an upload against a previously issued ticket.
type CompleteUploadCqe struct {
	VideoID  string `json:"video_id"`
	Filename string `json:"filename"`
}

func (c *CompleteUploadCqe) Validate() error {
	if c.VideoID == "" {
		return &gateway.ValidationError{Field: "video_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Filename) == "" {
		return &gateway.ValidationError{Field: "filename", Reason: "must not be empty"}
	}
	return nil
}

// UploadSubtitleCqe attaches a subtitle track to a video.
type UploadSubtitleCqe struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

func (c *UploadSubtitleCqe) Validate() error {
	if c.VideoID == "" {
		return &gateway.ValidationError{Field: "video_id", Reason: "must not be empty"}
	}
	if !vo.ValidLanguageCode(c.Language) {
		return &gateway.ValidationError{Field: "language", Reason: "not a recognized two-letter code"}
	}
	// WebVTT files open with a signature line; anything else is garbage that
	// players would silently fail on.
	if !strings.HasPrefix(strings.TrimLeft(c.Content, "\uFEFF"), "WEBVTT") {
		return &gateway.ValidationError{Field: "content", Reason: "not a WebVTT document"}
	}
	return nil
}

// CreatePlaylistCqe creates a named playlist.
type CreatePlaylistCqe struct {
	Name    string `json:"name"`
	OwnerID uint   `json:"owner_id"`
}

func (c *CreatePlaylistCqe) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &gateway.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.OwnerID == 0 {
		return &gateway.ValidationError{Field: "owner_id", Reason: "must not be zero"}
	}
	return nil
}
