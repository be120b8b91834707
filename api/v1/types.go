// Package v1 holds the request/response types of the dispatch agent's
// HTTP API. In the teacher this package is produced by
// `oapi-codegen` from an OpenAPI document with only extension.go
// hand-written on top; the OpenAPI document for this service was not
// part of the retrieval pack, so this file is the hand-authored
// equivalent of that generated output, kept in the same package and
// naming style so internal/handlers can consume it exactly as it would
// consume real codegen output.
//
//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen --config=oapi-codegen.yaml openapi.yaml
package v1

// TaskCreate is the request body of POST /api/tasks.
type TaskCreate struct {
	Payload   map[string]any `json:"payload"`
	Priority  int            `json:"priority"`
	AsyncMode bool           `json:"async_mode"`
}

// TaskResponse is the response body of POST/GET /api/tasks/{id}.
type TaskResponse struct {
	TaskID   string         `json:"task_id"`
	Status   string         `json:"status"`
	Position *int           `json:"position,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Error    *string        `json:"error,omitempty"`
}

// TaskSummary is one row of GET /api/tasks's list/history payload.
type TaskSummary struct {
	TaskID      string   `json:"task_id"`
	Status      string   `json:"status"`
	Priority    int      `json:"priority"`
	FileName    *string  `json:"file_name,omitempty"`
	CreatedAt   string   `json:"created_at"`
	StartedAt   *string  `json:"started_at,omitempty"`
	CompletedAt *string  `json:"completed_at,omitempty"`
	Position    *int     `json:"position,omitempty"`
	WorkerID    *string  `json:"worker_id,omitempty"`
	WorkerName  *string  `json:"worker_name,omitempty"`
	Error       *string  `json:"error,omitempty"`
	RetryCount  int      `json:"retry_count"`
	Duration    *float64 `json:"duration,omitempty"`
}

// TaskListResponse is the paginated listing returned by GET /api/tasks.
type TaskListResponse struct {
	Tasks    []TaskSummary `json:"tasks"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// FailedTaskResponse is one row of GET /api/tasks/failed/list.
type FailedTaskResponse struct {
	TaskID      string         `json:"task_id"`
	Status      string         `json:"status"`
	Priority    int            `json:"priority"`
	Payload     map[string]any `json:"payload"`
	Error       string         `json:"error"`
	RetryCount  int            `json:"retry_count"`
	CreatedAt   string         `json:"created_at"`
	CompletedAt *string        `json:"completed_at,omitempty"`
	Duration    *float64       `json:"duration,omitempty"`
}

// FailedTaskListResponse wraps GET /api/tasks/failed/list.
type FailedTaskListResponse struct {
	Tasks []FailedTaskResponse `json:"tasks"`
	Total int                  `json:"total"`
}

// MessageResponse is the generic acknowledgement body ({"message": "..."})
// shared by cancel/retry/enable/disable.
type MessageResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// InstanceCreate is the request body of POST /api/instances.
type InstanceCreate struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Backend string `json:"backend"`
}

// InstanceUpdate is the request body of PATCH /api/instances/{id}. Every
// field is optional: nil means "leave unchanged".
type InstanceUpdate struct {
	Name    *string `json:"name,omitempty"`
	URL     *string `json:"url,omitempty"`
	Backend *string `json:"backend,omitempty"`
}

// InstanceResponse is the response body for worker registry endpoints.
type InstanceResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Status        string  `json:"status"`
	CurrentTaskID *string `json:"current_task_id,omitempty"`
	TotalTasks    int     `json:"total_tasks"`
	FailedTasks   int     `json:"failed_tasks"`
	LastHeartbeat *string `json:"last_heartbeat,omitempty"`
	Enabled       bool    `json:"enabled"`
	Backend       string  `json:"backend"`
}

// ConfigResponse mirrors CenterConfig's public, patchable fields.
type ConfigResponse struct {
	TaskTimeout         int  `json:"task_timeout"`
	QueueTimeout        int  `json:"queue_timeout"`
	MaxQueueSize        int  `json:"max_queue_size"`
	EnablePriority      bool `json:"enable_priority"`
	MaxRetries          int  `json:"max_retries"`
	RetryDelay          int  `json:"retry_delay"`
	HealthCheckInterval int  `json:"health_check_interval"`
	InstanceTimeout     int  `json:"instance_timeout"`
}

// ConfigUpdate is the request body of PATCH /api/config. Every field is
// optional, matching ConfigUpdate.model_dump(exclude_unset=True).
type ConfigUpdate struct {
	TaskTimeout         *int  `json:"task_timeout,omitempty"`
	QueueTimeout        *int  `json:"queue_timeout,omitempty"`
	MaxQueueSize        *int  `json:"max_queue_size,omitempty"`
	EnablePriority      *bool `json:"enable_priority,omitempty"`
	MaxRetries          *int  `json:"max_retries,omitempty"`
	RetryDelay          *int  `json:"retry_delay,omitempty"`
	HealthCheckInterval *int  `json:"health_check_interval,omitempty"`
	InstanceTimeout     *int  `json:"instance_timeout,omitempty"`
}

// StatsResponse is the body of GET /api/stats and every message pushed
// over the /api/stats/ws websocket.
type StatsResponse struct {
	Queue     StatsQueue     `json:"queue"`
	Tasks     StatsTasks     `json:"tasks"`
	Instances StatsInstances `json:"instances"`
}

type StatsQueue struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
}

type StatsTasks struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type StatsInstances struct {
	Total   int `json:"total"`
	Idle    int `json:"idle"`
	Busy    int `json:"busy"`
	Offline int `json:"offline"`
}

// TaskListParams binds GET /api/tasks's query parameters.
type TaskListParams struct {
	Status   *string `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
