package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a build job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks one queued build request.
type Job struct {
	mu sync.Mutex

	ID      string    `json:"job_id"`
	Request Request   `json:"request"`
	Status  JobStatus `json:"status"`
	Phase   string    `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	summaries []Summary
	errors    []string
}

// NewJob returns a queued job with a time-ordered ID.
func NewJob(req Request) *Job {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := time.Now()
	return &Job{
		ID:        id.String(),
		Request:   req,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetSummaries stores the per-directory results of the build.
func (j *Job) SetSummaries(s []Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.summaries = append([]Summary(nil), s...)
	j.UpdatedAt = time.Now()
}

// Finish sets the final status from the build outcome: failed when err
// stopped the build, partial when only some files failed.
func (j *Job) Finish(summaries []Summary, err error) {
	j.SetSummaries(summaries)
	switch {
	case err == nil:
		j.SetStatus(StatusCompleted, "done")
	case IsFatal(err):
		j.AddError(err.Error())
		j.SetStatus(StatusFailed, "build failed")
	default:
		for _, line := range strings.Split(err.Error(), "\n") {
			j.AddError(line)
		}
		j.SetStatus(StatusPartial, "completed with file errors")
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Request   Request   `json:"request"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Summaries []Summary `json:"summaries"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	sums := append([]Summary{}, j.summaries...)
	return JobSnapshot{
		ID:        j.ID,
		Request:   j.Request,
		Status:    j.Status,
		Phase:     j.Phase,
		Summaries: sums,
		Errors:    errs,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
