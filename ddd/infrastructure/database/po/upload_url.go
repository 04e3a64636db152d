package po

import "time"

// VideoUploadUrlPO is the persistence object for upload tickets.
type VideoUploadUrlPO struct {
	BaseModel
	PublicVideoID string     `gorm:"column:public_video_id;type:varchar(36);uniqueIndex;not null" json:"public_video_id"`
	ExpiresAt     int64      `gorm:"column:expires_at;index;not null" json:"expires_at"`
	WasUsed       bool       `gorm:"column:was_used;index;default:false" json:"was_used"`
	LastCheckedAt *time.Time `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	OwnerID       uint       `gorm:"column:owner_id;index;not null" json:"owner_id"`
	PlaylistID    *uint      `gorm:"column:playlist_id;index" json:"playlist_id,omitempty"`
	Origin        string     `gorm:"column:origin;type:varchar(255)" json:"origin"`
	Filename      string     `gorm:"column:filename;type:varchar(255)" json:"filename"`
}

func (VideoUploadUrlPO) TableName() string {
	return "video_upload_urls"
}
