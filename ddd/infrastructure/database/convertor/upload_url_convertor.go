package convertor

import (
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

func UploadUrlToPO(u *entity.VideoUploadUrl) *po.VideoUploadUrlPO {
	p := &po.VideoUploadUrlPO{
		PublicVideoID: u.PublicVideoID,
		ExpiresAt:     u.ExpiresAt,
		WasUsed:       u.WasUsed,
		LastCheckedAt: u.LastCheckedAt,
		OwnerID:       u.OwnerID,
		PlaylistID:    u.PlaylistID,
		Origin:        u.Origin,
		Filename:      u.Filename,
	}
	p.ID = u.ID
	return p
}

func UploadUrlToEntity(p *po.VideoUploadUrlPO) *entity.VideoUploadUrl {
	return &entity.VideoUploadUrl{
		ID:            p.ID,
		PublicVideoID: p.PublicVideoID,
		ExpiresAt:     p.ExpiresAt,
		WasUsed:       p.WasUsed,
		LastCheckedAt: p.LastCheckedAt,
		OwnerID:       p.OwnerID,
		PlaylistID:    p.PlaylistID,
		Origin:        p.Origin,
		Filename:      p.Filename,
		CreatedAt:     p.CreatedAt,
	}
}

func PlaylistToPO(pl *entity.Playlist) *po.PlaylistPO {
	p := &po.PlaylistPO{
		PublicID: pl.PublicID,
		Name:     pl.Name,
		OwnerID:  pl.OwnerID,
	}
	p.ID = pl.ID
	return p
}

func PlaylistToEntity(p *po.PlaylistPO) *entity.Playlist {
	return &entity.Playlist{
		ID:        p.ID,
		PublicID:  p.PublicID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
	}
}
