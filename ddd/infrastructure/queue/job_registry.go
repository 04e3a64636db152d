package queue

import (
	"sync"
	"time"

	"video-pipeline-service/ddd/domain/gateway"
)

// jobState is the lifecycle position of a dispatched job.
type jobState int

const (
	stateQueued jobState = iota
	stateRunning
	stateSucceeded
	stateFailed
)

// JobRecord is the pollable state of one dispatched encode job. The worker
// pool writes into it while the polling side reads it through the JobHandle
// interface; neither side ever blocks on the other.
type JobRecord struct {
	id       string
	videoID  string
	preset   string
	mu       sync.RWMutex
	state    jobState
	progress int
	err      error
	started  time.Time
	finished time.Time
}

var _ gateway.JobHandle = (*JobRecord)(nil)

func (r *JobRecord) ID() string      { return r.id }
func (r *JobRecord) VideoID() string { return r.videoID }
func (r *JobRecord) Preset() string  { return r.preset }

func (r *JobRecord) IsDone() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == stateSucceeded || r.state == stateFailed
}

func (r *JobRecord) IsSuccessful() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == stateSucceeded
}

func (r *JobRecord) Progress() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress
}

func (r *JobRecord) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// SetRunning marks the job as picked up by a worker.
func (r *JobRecord) SetRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = stateRunning
	r.started = time.Now()
}

// SetProgress records encoder progress. Regressions are ignored so polling
// never observes progress moving backwards.
func (r *JobRecord) SetProgress(pct int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pct > r.progress {
		r.progress = pct
	}
}

// SetSucceeded marks the job done with full progress.
func (r *JobRecord) SetSucceeded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = stateSucceeded
	r.progress = 100
	r.finished = time.Now()
}

// SetFailed marks the job done carrying its failure.
func (r *JobRecord) SetFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = stateFailed
	r.err = err
	r.finished = time.Now()
}

// JobRegistry tracks the records of all dispatched jobs by job id.
type JobRegistry struct {
	mu      sync.RWMutex
	records map[string]*JobRecord
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{records: make(map[string]*JobRecord)}
}

// Register creates the record for a job about to be enqueued.
func (reg *JobRegistry) Register(jobID, videoID, preset string) *JobRecord {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	record := &JobRecord{id: jobID, videoID: videoID, preset: preset}
	reg.records[jobID] = record
	return record
}

// Get returns the record for a job id, or nil when unknown.
func (reg *JobRegistry) Get(jobID string) *JobRecord {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.records[jobID]
}

// Remove drops a record once its result has been consumed.
func (reg *JobRegistry) Remove(jobID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.records, jobID)
}

// Size returns the number of tracked records.
func (reg *JobRegistry) Size() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.records)
}
