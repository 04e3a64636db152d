package vo

// ProcessingStatus tracks a video through the encode pipeline.
type ProcessingStatus string

const (
	// StatusPending waiting for the pipeline to pick the video up.
	StatusPending ProcessingStatus = "pending"
	// StatusProcessing encode jobs are running.
	StatusProcessing ProcessingStatus = "processing"
	// StatusFailed at least one encode job reported an error.
	StatusFailed ProcessingStatus = "failed"
	// StatusSuccess all encode jobs finished successfully.
	StatusSuccess ProcessingStatus = "success"
	// StatusRestart externally triggered re-entry to pending.
	StatusRestart ProcessingStatus = "restart"
)

func (s ProcessingStatus) String() string { return string(s) }

// IsTerminal reports whether the pipeline stopped driving this video.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Valid reports whether the value is one of the known statuses.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusFailed, StatusSuccess, StatusRestart:
		return true
	}
	return false
}
