package models

import "time"

// WorkerStatus is the live state of a remote worker endpoint.
type WorkerStatus string

const (
	WorkerIdle     WorkerStatus = "idle"
	WorkerBusy     WorkerStatus = "busy"
	WorkerOffline  WorkerStatus = "offline"
	WorkerError    WorkerStatus = "error"
	WorkerDisabled WorkerStatus = "disabled"
)

// Worker is a remote endpoint capable of executing one job at a time.
type Worker struct {
	ID      string
	Name    string
	URL     string
	Backend string

	Status        WorkerStatus
	CurrentJobID  string
	Enabled       bool
	TotalJobs     int
	FailedJobs    int
	LastHeartbeat *time.Time
	CreatedAt     time.Time
}

// DebugMap returns a structured view suitable for zap.Any logging.
func (w *Worker) DebugMap() map[string]any {
	return map[string]any{
		"id":         w.ID,
		"name":       w.Name,
		"status":     string(w.Status),
		"enabled":    w.Enabled,
		"total_jobs": w.TotalJobs,
	}
}

// Clone returns a shallow copy, safe to hand to a caller outside the pool lock.
func (w *Worker) Clone() *Worker {
	c := *w
	return &c
}
