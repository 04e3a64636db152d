package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/pkg/logger"
)

// TranscodeApp drives a video through the encode pipeline: pending, one job
// per preset, aggregated progress, then formats, thumbnail and poster frames
// on success.
type TranscodeApp interface {
	TranscodeVideo(ctx context.Context, publicVideoID string) error
}

type transcodeAppImpl struct {
	videoRepo    repo.VideoRepository
	stateRepo    repo.ProcessingStateRepository
	formatRepo   repo.FormatRepository
	backend      gateway.StorageBackend
	pollInterval time.Duration
}

func NewTranscodeApp(
	videoRepo repo.VideoRepository,
	stateRepo repo.ProcessingStateRepository,
	formatRepo repo.FormatRepository,
	backend gateway.StorageBackend,
	pollInterval time.Duration,
) TranscodeApp {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &transcodeAppImpl{
		videoRepo:    videoRepo,
		stateRepo:    stateRepo,
		formatRepo:   formatRepo,
		backend:      backend,
		pollInterval: pollInterval,
	}
}

// TranscodeVideo runs the whole pipeline for one video and blocks until it
// reaches success or failed. Failures of individual jobs are collected; the
// remaining jobs are left to finish before the state flips.
func (a *transcodeAppImpl) TranscodeVideo(ctx context.Context, publicVideoID string) error {
	video, err := a.videoRepo.GetByPublicID(ctx, publicVideoID)
	if err != nil {
		return err
	}

	state, err := a.stateRepo.GetByVideoID(ctx, video.ID)
	if err != nil {
		return err
	}

	state.SetPending()
	if err := a.stateRepo.Save(ctx, state); err != nil {
		return err
	}

	handles, err := a.backend.StartTranscoding(ctx, publicVideoID)
	if err != nil {
		return a.fail(ctx, state, publicVideoID, []string{err.Error()})
	}

	errorLines, err := a.pollJobs(ctx, state, handles)
	if err != nil {
		return err
	}

	// Renditions are recorded from whatever exists on storage, before the
	// failure check: a run where one preset failed still exposes the
	// renditions its sibling jobs produced.
	formats := make([]entity.VideoFormat, 0, len(handles))
	for format := range a.backend.IterFormats(ctx, publicVideoID) {
		formats = append(formats, entity.VideoFormat{Name: format.Name, Bitrate: format.Bitrate})
	}
	if err := a.formatRepo.ReplaceForVideo(ctx, video.ID, formats); err != nil {
		return err
	}

	if len(errorLines) > 0 {
		return a.fail(ctx, state, publicVideoID, errorLines)
	}

	if err := a.backend.CreateThumbnail(ctx, publicVideoID, video.PublicThumbnailID); err != nil {
		return a.fail(ctx, state, publicVideoID, []string{fmt.Sprintf("thumbnail: %s", err)})
	}
	if err := a.backend.CreatePosterFrames(ctx, publicVideoID, video.PublicPosterFramesID); err != nil {
		return a.fail(ctx, state, publicVideoID, []string{fmt.Sprintf("poster frames: %s", err)})
	}

	state.SetSuccess()
	if err := a.stateRepo.Save(ctx, state); err != nil {
		return err
	}

	logger.Info("video pipeline finished", map[string]interface{}{
		"video_id": publicVideoID,
		"formats":  len(formats),
	})
	return nil
}

// pollJobs polls every handle until all are done, persisting the mean
// progress after each round. It returns the collected failure details; a
// failed job never cancels its siblings.
func (a *transcodeAppImpl) pollJobs(ctx context.Context, state *entity.ProcessingState, handles []gateway.JobHandle) ([]string, error) {
	progress := make([]int, len(handles))
	done := make([]bool, len(handles))
	var errorLines []string

	for {
		remaining := 0
		for i, handle := range handles {
			if done[i] {
				continue
			}
			pct, finished, err := a.backend.CheckProgress(ctx, handle)
			progress[i] = pct

			var failed *gateway.TranscodingFailedError
			if errors.As(err, &failed) {
				done[i] = true
				errorLines = append(errorLines, failed.Detail)
				continue
			}
			if err != nil {
				return nil, err
			}
			if finished {
				done[i] = true
				progress[i] = 100
				continue
			}
			remaining++
		}

		state.SetProcessing(meanProgress(progress))
		if err := a.stateRepo.Save(ctx, state); err != nil {
			return nil, err
		}

		if remaining == 0 {
			return errorLines, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}
	}
}

func (a *transcodeAppImpl) fail(ctx context.Context, state *entity.ProcessingState, publicVideoID string, lines []string) error {
	state.SetErrors(lines)
	if err := a.stateRepo.Save(ctx, state); err != nil {
		return err
	}
	logger.Error("video pipeline failed", map[string]interface{}{
		"video_id": publicVideoID,
		"errors":   len(lines),
	})
	return fmt.Errorf("transcoding of video %s failed: %d job error(s)", publicVideoID, len(lines))
}

func meanProgress(progress []int) float64 {
	if len(progress) == 0 {
		return 100
	}
	total := 0
	for _, p := range progress {
		total += p
	}
	return float64(total) / float64(len(progress))
}
