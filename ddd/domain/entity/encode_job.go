package entity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"video-pipeline-service/pkg/config"
)

// ProgressFunc receives percentage progress (0-100) from a running encode.
type ProgressFunc func(progress int)

// ExecFunc performs the actual encode work for a job. Backends build the
// closure so the worker pool stays independent of the storage technology.
type ExecFunc func(ctx context.Context, report ProgressFunc) error

// EncodeJob is one dispatched rendition encode: a single video, a single
// preset. Jobs for the presets of one video are independent and may run in
// any order.
type EncodeJob struct {
	jobUUID   string
	videoID   string
	preset    string
	settings  config.PresetConfig
	exec      ExecFunc
	createdAt time.Time
}

// NewEncodeJob builds a job for one preset of one video.
func NewEncodeJob(videoID, preset string, settings config.PresetConfig, exec ExecFunc) *EncodeJob {
	return &EncodeJob{
		jobUUID:   uuid.New().String(),
		videoID:   videoID,
		preset:    preset,
		settings:  settings,
		exec:      exec,
		createdAt: time.Now(),
	}
}

func (j *EncodeJob) JobUUID() string               { return j.jobUUID }
func (j *EncodeJob) VideoID() string               { return j.videoID }
func (j *EncodeJob) Preset() string                { return j.preset }
func (j *EncodeJob) Settings() config.PresetConfig { return j.settings }
func (j *EncodeJob) CreatedAt() time.Time          { return j.createdAt }

// Execute runs the encode closure.
func (j *EncodeJob) Execute(ctx context.Context, report ProgressFunc) error {
	if j.exec == nil {
		return nil
	}
	return j.exec(ctx, report)
}
