package po

// PlaylistPO is the persistence object for playlists.
type PlaylistPO struct {
	BaseModel
	PublicID string `gorm:"column:public_id;type:varchar(36);uniqueIndex;not null" json:"public_id"`
	Name     string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	OwnerID  uint   `gorm:"column:owner_id;index;not null" json:"owner_id"`
}

func (PlaylistPO) TableName() string {
	return "playlists"
}

// PlaylistVideoPO is the playlist membership join table.
type PlaylistVideoPO struct {
	BaseModel
	PlaylistID uint `gorm:"column:playlist_id;index:idx_playlist_video,unique;not null" json:"playlist_id"`
	VideoID    uint `gorm:"column:video_id;index:idx_playlist_video,unique;not null" json:"video_id"`
}

func (PlaylistVideoPO) TableName() string {
	return "playlist_videos"
}
