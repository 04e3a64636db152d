package convertor

import (
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

// VideoToPO maps a video entity onto its persistence object. Dependent
// records are mapped separately; gorm associations are not written through
// the video.
func VideoToPO(v *entity.Video) *po.VideoPO {
	p := &po.VideoPO{
		PublicID:             v.PublicID,
		PublicThumbnailID:    v.PublicThumbnailID,
		PublicPosterFramesID: v.PublicPosterFramesID,
		Title:                v.Title,
		OwnerID:              v.OwnerID,
	}
	p.ID = v.ID
	return p
}

func VideoToEntity(p *po.VideoPO) *entity.Video {
	v := &entity.Video{
		ID:                   p.ID,
		PublicID:             p.PublicID,
		PublicThumbnailID:    p.PublicThumbnailID,
		PublicPosterFramesID: p.PublicPosterFramesID,
		Title:                p.Title,
		OwnerID:              p.OwnerID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if p.ProcessingState != nil {
		v.ProcessingState = ProcessingStateToEntity(p.ProcessingState)
	}
	for i := range p.Formats {
		v.Formats = append(v.Formats, FormatToEntity(&p.Formats[i]))
	}
	for i := range p.Subtitles {
		v.Subtitles = append(v.Subtitles, SubtitleToEntity(&p.Subtitles[i]))
	}
	return v
}

func ProcessingStateToPO(s *entity.ProcessingState) *po.ProcessingStatePO {
	p := &po.ProcessingStatePO{
		VideoID:   s.VideoID,
		Status:    string(s.Status),
		Progress:  s.Progress,
		StartedAt: s.StartedAt,
		Message:   s.Message,
	}
	p.ID = s.ID
	return p
}

func ProcessingStateToEntity(p *po.ProcessingStatePO) *entity.ProcessingState {
	return &entity.ProcessingState{
		ID:        p.ID,
		VideoID:   p.VideoID,
		Status:    vo.ProcessingStatus(p.Status),
		Progress:  p.Progress,
		StartedAt: p.StartedAt,
		Message:   p.Message,
		UpdatedAt: p.UpdatedAt,
	}
}

func FormatToPO(videoID uint, f *entity.VideoFormat) *po.VideoFormatPO {
	p := &po.VideoFormatPO{
		VideoID: videoID,
		Name:    f.Name,
		Bitrate: f.Bitrate,
	}
	p.ID = f.ID
	return p
}

func FormatToEntity(p *po.VideoFormatPO) entity.VideoFormat {
	return entity.VideoFormat{
		ID:        p.ID,
		VideoID:   p.VideoID,
		Name:      p.Name,
		Bitrate:   p.Bitrate,
		CreatedAt: p.CreatedAt,
	}
}

func SubtitleToPO(s *entity.Subtitle) *po.SubtitlePO {
	p := &po.SubtitlePO{
		VideoID:  s.VideoID,
		PublicID: s.PublicID,
		Language: s.Language,
	}
	p.ID = s.ID
	return p
}

func SubtitleToEntity(p *po.SubtitlePO) entity.Subtitle {
	return entity.Subtitle{
		ID:        p.ID,
		VideoID:   p.VideoID,
		PublicID:  p.PublicID,
		Language:  p.Language,
		CreatedAt: p.CreatedAt,
	}
}
