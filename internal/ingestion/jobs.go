package ingestion

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radini5948/Bieszczady/internal/imgw"
)

type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// SyncJob is the observable record of one bulk sync run. The triggering
// caller gets the ID back immediately and polls for the rest.
type SyncJob struct {
	ID                string              `json:"id"`
	State             JobState            `json:"state"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        *time.Time          `json:"finished_at,omitempty"`
	StationsScheduled int                 `json:"stations_scheduled"`
	Stored            int                 `json:"stored"`
	Duplicates        int                 `json:"duplicates"`
	Rejected          int                 `json:"rejected"`
	Empty             int                 `json:"empty"`
	Errors            []imgw.StationError `json:"errors,omitempty"`
}

type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*SyncJob
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{
		jobs: make(map[string]*SyncJob),
	}
}

func (r *jobRegistry) create(scheduled int, listErrors []imgw.StationError) *SyncJob {
	job := &SyncJob{
		ID:                uuid.NewString(),
		State:             JobRunning,
		StartedAt:         time.Now(),
		StationsScheduled: scheduled,
		Errors:            listErrors,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	return snapshot(job)
}

// get returns a copy so callers never observe a job mid-update.
func (r *jobRegistry) get(id string) (*SyncJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

func (r *jobRegistry) update(id string, fn func(*SyncJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[id]; ok {
		fn(job)
	}
}

func snapshot(job *SyncJob) *SyncJob {
	cp := *job
	cp.Errors = append([]imgw.StationError(nil), job.Errors...)
	if job.FinishedAt != nil {
		finished := *job.FinishedAt
		cp.FinishedAt = &finished
	}
	return &cp
}
