package entity

import (
	"strings"
	"time"

	"video-pipeline-service/ddd/domain/vo"
)

// ProcessingState is the one-to-one pipeline companion of a Video. The Set
// methods are the only mutation path; callers persist the entity after each
// transition.
type ProcessingState struct {
	ID        uint
	VideoID   uint
	Status    vo.ProcessingStatus
	Progress  float64
	StartedAt time.Time
	Message   string
	UpdatedAt time.Time
}

// NewProcessingState returns the initial state a video enters the pipeline in.
func NewProcessingState(videoID uint) *ProcessingState {
	return &ProcessingState{
		VideoID:   videoID,
		Status:    vo.StatusPending,
		Progress:  0,
		StartedAt: time.Now(),
	}
}

// SetPending resets progress to zero, clears any prior error message and
// refreshes the start timestamp. A restart re-enters the pipeline through
// this transition.
func (s *ProcessingState) SetPending() {
	s.Progress = 0
	s.Status = vo.StatusPending
	s.Message = ""
	s.StartedAt = time.Now()
}

// SetProcessing records the aggregated encode progress.
func (s *ProcessingState) SetProcessing(progress float64) {
	s.Progress = progress
	s.Status = vo.StatusProcessing
}

// SetSuccess marks the pipeline run complete.
func (s *ProcessingState) SetSuccess() {
	s.Status = vo.StatusSuccess
}

// SetRestart flags the video for another pipeline run. Progress and message
// are left as they are; SetPending clears them when the run actually starts.
func (s *ProcessingState) SetRestart() {
	s.Status = vo.StatusRestart
}

// SetErrors appends the given error lines to the message. The status flips to
// failed only when at least one error is given; an empty slice leaves the
// status untouched.
func (s *ProcessingState) SetErrors(errors []string) {
	lines := make([]string, 0, len(errors)+1)
	if s.Message != "" {
		lines = append(lines, s.Message)
	}
	lines = append(lines, errors...)
	s.Message = strings.Join(lines, "\n")
	if len(errors) > 0 {
		s.Status = vo.StatusFailed
	}
}
