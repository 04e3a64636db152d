package po

import "time"

// VideoPO is the persistence object for videos.
type VideoPO struct {
	BaseModel
	PublicID             string `gorm:"column:public_id;type:varchar(36);uniqueIndex;not null" json:"public_id"`
	PublicThumbnailID    string `gorm:"column:public_thumbnail_id;type:varchar(36)" json:"public_thumbnail_id"`
	PublicPosterFramesID string `gorm:"column:public_poster_frames_id;type:varchar(36)" json:"public_poster_frames_id"`
	Title                string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	OwnerID              uint   `gorm:"column:owner_id;index;not null" json:"owner_id"`

	ProcessingState *ProcessingStatePO `gorm:"foreignKey:VideoID" json:"processing_state,omitempty"`
	Formats         []VideoFormatPO    `gorm:"foreignKey:VideoID" json:"formats,omitempty"`
	Subtitles       []SubtitlePO       `gorm:"foreignKey:VideoID" json:"subtitles,omitempty"`
}

func (VideoPO) TableName() string {
	return "videos"
}

// ProcessingStatePO is the persistence object for processing states.
type ProcessingStatePO struct {
	BaseModel
	VideoID   uint      `gorm:"column:video_id;uniqueIndex;not null" json:"video_id"`
	Status    string    `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Progress  float64   `gorm:"column:progress;default:0" json:"progress"`
	StartedAt time.Time `gorm:"column:started_at" json:"started_at"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
}

func (ProcessingStatePO) TableName() string {
	return "video_processing_states"
}

// VideoFormatPO is the persistence object for produced renditions.
type VideoFormatPO struct {
	BaseModel
	VideoID uint   `gorm:"column:video_id;index:idx_format_video_name,unique;not null" json:"video_id"`
	Name    string `gorm:"column:name;type:varchar(50);index:idx_format_video_name,unique;not null" json:"name"`
	Bitrate int64  `gorm:"column:bitrate;not null" json:"bitrate"`
}

func (VideoFormatPO) TableName() string {
	return "video_formats"
}

// SubtitlePO is the persistence object for subtitle tracks.
type SubtitlePO struct {
	BaseModel
	VideoID  uint   `gorm:"column:video_id;index;not null" json:"video_id"`
	PublicID string `gorm:"column:public_id;type:varchar(36);uniqueIndex;not null" json:"public_id"`
	Language string `gorm:"column:language;type:varchar(2);not null" json:"language"`
}

func (SubtitlePO) TableName() string {
	return "video_subtitles"
}
