package models

import "time"

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobTimeout   JobStatus = "timeout"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status leaves no further lifecycle transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobTimeout, JobCancelled:
		return true
	default:
		return false
	}
}

// Payload is the free-form, core-opaque document plus parsing options
// submitted with a job.
type Payload map[string]any

// Backend returns the payload's requested backend tag, or "" if absent.
func (p Payload) Backend() string {
	if p == nil {
		return ""
	}
	v, _ := p["backend"].(string)
	return v
}

// WithBackend returns a shallow copy of the payload with backend set.
func (p Payload) WithBackend(backend string) Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out["backend"] = backend
	return out
}

// Job is the unit of parsing work dispatched to a Worker.
type Job struct {
	ID       string
	Payload  Payload
	FileName string
	Priority int
	Status   JobStatus

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Result map[string]any
	Error  string

	RetryCount int
	WorkerID   string
	WorkerName string

	// Duration is the job's run time in seconds, set once CompletedAt and
	// StartedAt are both known. Queued-but-never-started terminal jobs
	// (e.g. a queue timeout) leave it nil.
	Duration *float64
}

// ElapsedSeconds computes the elapsed seconds between StartedAt and
// CompletedAt, or nil if either is unset. Used to populate Duration at
// persistence time.
func (j *Job) ElapsedSeconds() *float64 {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return nil
	}
	d := j.CompletedAt.Sub(*j.StartedAt).Seconds()
	return &d
}

// Less reports canonical ordering: a Job sorts before another when it has
// higher priority, or equal priority and an earlier CreatedAt.
func (j *Job) Less(other *Job) bool {
	if j.Priority != other.Priority {
		return j.Priority > other.Priority
	}
	return j.CreatedAt.Before(other.CreatedAt)
}

// DebugMap returns a structured view suitable for zap.Any logging.
func (j *Job) DebugMap() map[string]any {
	return map[string]any{
		"id":          j.ID,
		"status":      string(j.Status),
		"priority":    j.Priority,
		"retry_count": j.RetryCount,
		"worker_id":   j.WorkerID,
	}
}

// Clone returns a deep-enough copy for safe handoff across goroutines
// (the maps are not mutated in place once a job leaves the queue).
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
