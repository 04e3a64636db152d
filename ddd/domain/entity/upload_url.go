package entity

import (
	"time"

	"video-pipeline-service/pkg/randomid"
)

// VideoUploadUrl is a short-lived upload ticket. The public video id is
// pre-allocated before the video exists; the first successful upload claims
// it. Expiry gates the start of an upload, not its completion: an upload that
// began before expires_at proceeds normally even if it finishes later.
type VideoUploadUrl struct {
	ID            uint
	PublicVideoID string
	ExpiresAt     int64
	WasUsed       bool
	LastCheckedAt *time.Time
	OwnerID       uint
	PlaylistID    *uint
	// Origin overrides the Access-Control-Allow-Origin header for uploads
	// coming from a specific external origin.
	Origin   string
	Filename string

	CreatedAt time.Time
}

// NewVideoUploadUrl pre-allocates a public video id valid until expiresAt
// (epoch seconds).
func NewVideoUploadUrl(ownerID uint, expiresAt int64) *VideoUploadUrl {
	return &VideoUploadUrl{
		PublicVideoID: randomid.NewShort(),
		ExpiresAt:     expiresAt,
		OwnerID:       ownerID,
	}
}

// CanStartUpload reports whether an upload may begin at the given time. This
// is the only place expiry is enforced; once an upload started, nothing
// cancels it mid-flight.
func (u *VideoUploadUrl) CanStartUpload(now time.Time) bool {
	if u.WasUsed {
		return false
	}
	return now.Unix() < u.ExpiresAt
}

// MarkUsed claims the ticket after the first successful upload.
func (u *VideoUploadUrl) MarkUsed(filename string) {
	u.WasUsed = true
	u.Filename = filename
}

// MarkChecked records when the ticket was last inspected by a client.
func (u *VideoUploadUrl) MarkChecked(now time.Time) {
	u.LastCheckedAt = &now
}

// Collectable reports whether the ticket is eligible for garbage collection:
// expired, never used, and not inspected for at least the grace period.
func (u *VideoUploadUrl) Collectable(now time.Time, grace time.Duration) bool {
	if u.WasUsed {
		return false
	}
	if now.Unix() < u.ExpiresAt {
		return false
	}
	if u.LastCheckedAt != nil && now.Sub(*u.LastCheckedAt) < grace {
		return false
	}
	return true
}
