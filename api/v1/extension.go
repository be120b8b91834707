package v1

import (
	"time"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/services"
)

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewTaskResponseFromModel converts a models.Job into the body returned by
// POST/GET /api/tasks/{id}, grounded on TaskResponse's field shape in
// app/models/task.py.
func NewTaskResponseFromModel(j *models.Job, position *int) TaskResponse {
	resp := TaskResponse{
		TaskID:   j.ID,
		Status:   string(j.Status),
		Position: position,
		Result:   j.Result,
		Error:    stringPtrOrNil(j.Error),
	}
	return resp
}

// NewTaskSummaryFromModel converts a models.Job into one row of GET
// /api/tasks, matching list_tasks's per-row dict construction.
func NewTaskSummaryFromModel(j *models.Job, position *int) TaskSummary {
	return TaskSummary{
		TaskID:      j.ID,
		Status:      string(j.Status),
		Priority:    j.Priority,
		FileName:    stringPtrOrNil(j.FileName),
		CreatedAt:   j.CreatedAt.UTC().Format(time.RFC3339),
		StartedAt:   formatTimePtr(j.StartedAt),
		CompletedAt: formatTimePtr(j.CompletedAt),
		Position:    position,
		WorkerID:    stringPtrOrNil(j.WorkerID),
		WorkerName:  stringPtrOrNil(j.WorkerName),
		Error:       stringPtrOrNil(j.Error),
		RetryCount:  j.RetryCount,
		Duration:    j.Duration,
	}
}

// NewFailedTaskResponseFromModel converts a models.Job into one row of
// GET /api/tasks/failed/list.
func NewFailedTaskResponseFromModel(j *models.Job) FailedTaskResponse {
	return FailedTaskResponse{
		TaskID:      j.ID,
		Status:      string(j.Status),
		Priority:    j.Priority,
		Payload:     j.Payload,
		Error:       j.Error,
		RetryCount:  j.RetryCount,
		CreatedAt:   j.CreatedAt.UTC().Format(time.RFC3339),
		CompletedAt: formatTimePtr(j.CompletedAt),
		Duration:    j.Duration,
	}
}

// NewInstanceResponseFromModel converts a models.Worker into the body
// returned by the worker registry endpoints, matching InstanceResponse's
// field shape in app/api/instances.py.
func NewInstanceResponseFromModel(w *models.Worker) InstanceResponse {
	return InstanceResponse{
		ID:            w.ID,
		Name:          w.Name,
		URL:           w.URL,
		Status:        string(w.Status),
		CurrentTaskID: stringPtrOrNil(w.CurrentJobID),
		TotalTasks:    w.TotalJobs,
		FailedTasks:   w.FailedJobs,
		LastHeartbeat: formatTimePtr(w.LastHeartbeat),
		Enabled:       w.Enabled,
		Backend:       w.Backend,
	}
}

// NewConfigResponseFromModel converts a config.Dispatch into the body
// returned by GET/PATCH /api/config. Durations are rendered in whole
// seconds, matching CenterConfig's int-seconds fields.
func NewConfigResponseFromModel(d config.Dispatch) ConfigResponse {
	return ConfigResponse{
		TaskTimeout:         int(d.TaskTimeout.Seconds()),
		QueueTimeout:        int(d.QueueTimeout.Seconds()),
		MaxQueueSize:        d.MaxQueueSize,
		EnablePriority:      d.EnablePriority,
		MaxRetries:          d.MaxRetries,
		RetryDelay:          int(d.RetryDelay.Seconds()),
		HealthCheckInterval: int(d.HealthCheckInterval.Seconds()),
		InstanceTimeout:     int(d.InstanceTimeout.Seconds()),
	}
}

// ApplyConfigUpdate merges a ConfigUpdate's set fields onto a base
// config.Dispatch, matching update_config's
// CenterConfig(**{**cfg.model_dump(), **update_data}) merge.
func ApplyConfigUpdate(base config.Dispatch, u ConfigUpdate) config.Dispatch {
	out := base
	if u.TaskTimeout != nil {
		out.TaskTimeout = time.Duration(*u.TaskTimeout) * time.Second
	}
	if u.QueueTimeout != nil {
		out.QueueTimeout = time.Duration(*u.QueueTimeout) * time.Second
	}
	if u.MaxQueueSize != nil {
		out.MaxQueueSize = *u.MaxQueueSize
	}
	if u.EnablePriority != nil {
		out.EnablePriority = *u.EnablePriority
	}
	if u.MaxRetries != nil {
		out.MaxRetries = *u.MaxRetries
	}
	if u.RetryDelay != nil {
		out.RetryDelay = time.Duration(*u.RetryDelay) * time.Second
	}
	if u.HealthCheckInterval != nil {
		out.HealthCheckInterval = time.Duration(*u.HealthCheckInterval) * time.Second
	}
	if u.InstanceTimeout != nil {
		out.InstanceTimeout = time.Duration(*u.InstanceTimeout) * time.Second
	}
	return out
}

// NewStatsResponseFromModel converts a services.Stats snapshot into the
// wire shape of GET /api/stats and the stats websocket feed.
func NewStatsResponseFromModel(s services.Stats) StatsResponse {
	return StatsResponse{
		Queue: StatsQueue{Pending: s.QueuePending, Running: s.QueueRunning},
		Tasks: StatsTasks{Total: s.TasksTotal, Completed: s.TasksCompleted, Failed: s.TasksFailed},
		Instances: StatsInstances{
			Total:   s.InstancesTotal,
			Idle:    s.InstancesIdle,
			Busy:    s.InstancesBusy,
			Offline: s.InstancesOffline,
		},
	}
}
