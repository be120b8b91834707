// Package handlers implements the HTTP API layer for the dispatch agent.
//
// This package contains HTTP handlers that expose job submission, worker
// registry management, configuration, and statistics via a RESTful API.
// Handlers delegate business logic to the services layer and focus on
// request validation, response formatting, and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation                                           │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  JobService │ WorkerService │ StatsService │ ConfigService       │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Handler Structure
//
// All handlers are methods on a single Handler struct that holds service
// dependencies:
//
//	type Handler struct {
//	    jobSrv    *services.JobService
//	    workerSrv *services.WorkerService
//	    statsSrv  *services.StatsService
//	    configSrv *services.ConfigService
//	}
//
// internal/server registers each method against its route explicitly;
// there is no generated ServerInterface to satisfy.
//
// # API Endpoints
//
// Task Endpoints (tasks.go):
//
//	┌────────┬──────────────────────────┬───────────────────────────────────┐
//	│ Method │ Endpoint                 │ Description                       │
//	├────────┼──────────────────────────┼───────────────────────────────────┤
//	│ POST   │ /api/tasks               │ Submit a job (sync or async)      │
//	│ GET    │ /api/tasks               │ List jobs, optionally by status   │
//	│ GET    │ /api/tasks/{id}          │ Get job status/result             │
//	│ DELETE │ /api/tasks/{id}          │ Cancel a pending/running job       │
//	│ GET    │ /api/tasks/failed/list   │ List failed jobs                  │
//	│ POST   │ /api/tasks/{id}/retry    │ Requeue one failed job            │
//	│ POST   │ /api/tasks/retry-all     │ Requeue every failed job          │
//	│ POST   │ /file_parse              │ Multipart compatibility surface   │
//	└────────┴──────────────────────────┴───────────────────────────────────┘
//
// Instance Endpoints (instances.go):
//
//	┌────────┬───────────────────────────────┬──────────────────────────────┐
//	│ Method │ Endpoint                      │ Description                  │
//	├────────┼───────────────────────────────┼──────────────────────────────┤
//	│ GET    │ /api/instances                │ List registered workers      │
//	│ POST   │ /api/instances                │ Register a worker            │
//	│ PATCH  │ /api/instances/{id}           │ Update name/url/backend      │
//	│ DELETE │ /api/instances/{id}           │ Deregister a worker          │
//	│ POST   │ /api/instances/{id}/enable    │ Re-enable a disabled worker  │
//	│ POST   │ /api/instances/{id}/disable   │ Disable a worker             │
//	└────────┴───────────────────────────────┴──────────────────────────────┘
//
// Config Endpoints (config.go):
//
//	┌────────┬──────────────┬─────────────────────────────────────────────┐
//	│ Method │ Endpoint     │ Description                                 │
//	├────────┼──────────────┼─────────────────────────────────────────────┤
//	│ GET    │ /api/config  │ Get the live dispatch configuration        │
//	│ PATCH  │ /api/config  │ Patch and hot-apply the configuration      │
//	└────────┴──────────────┴─────────────────────────────────────────────┘
//
// Stats Endpoints (stats.go):
//
//	┌────────┬─────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint        │ Description                              │
//	├────────┼─────────────────┼──────────────────────────────────────────┤
//	│ GET    │ /api/stats      │ One-shot aggregate counters              │
//	│ GET    │ /api/stats/ws   │ Websocket feed, pushed every 2s          │
//	└────────┴─────────────────┴──────────────────────────────────────────┘
//
// # Task Handler
//
// POST /api/tasks - submits a job:
//
//	{ "payload": {...}, "priority": 5, "async_mode": true }
//
// When async_mode is true the response carries the job's queue position
// and status "pending"; the caller polls GET /api/tasks/{id}. When false
// the handler blocks until the job reaches a terminal state and returns
// its result or error directly.
//
// GET /api/tasks accepts an optional status query parameter (pending,
// running, completed, failed, timeout, cancelled). Pending/running are
// served from the live queue and dispatcher; any other value (including
// absent) is served from the store.
//
// POST /api/tasks also accepts a multipart/form-data body (a "file" part
// plus optional "priority"/"async"/"backend" form fields) as an
// alternative to the JSON form; POST /file_parse is a dedicated
// compatibility route for callers that only ever POST multipart uploads,
// both spooling the upload into the job payload as base64 the same way
// workerclient.Client later decodes it before forwarding to a worker.
//
// # Error Handling
//
// Handlers use a consistent error response format:
//
//	{ "error": "error message" }
//
// HTTP Status Code Mapping:
//
//	┌───────────────────────┬────────┬────────────────────────────────────┐
//	│ Error Type            │ Status │ When                               │
//	├───────────────────────┼────────┼────────────────────────────────────┤
//	│ Validation error       │ 400    │ Invalid request body/params        │
//	│ QueueFullError         │ 429    │ Queue at max_queue_size            │
//	│ ResourceNotFoundError  │ 404    │ Job/resource doesn't exist         │
//	│ WorkerNotFoundError    │ 404    │ Worker id doesn't exist            │
//	│ InvalidConfigError     │ 400    │ Config update violates a bound     │
//	│ ExecutionTimeoutError  │ 504    │ Synchronous wait exceeded timeout  │
//	│ QueueTimeoutError      │ 504    │ Job aged out of the queue          │
//	│ CancelledError         │ 409    │ Job was cancelled mid-wait         │
//	│ RemoteError            │ 502    │ Worker endpoint returned an error  │
//	│ Internal error         │ 500    │ Unexpected service errors          │
//	└───────────────────────┴────────┴────────────────────────────────────┘
//
// # Model Conversion
//
// Handlers convert between internal models and API types using extension
// functions defined in api/v1/extension.go:
//
//   - v1.NewTaskResponseFromModel(models.Job, *int) → v1.TaskResponse
//   - v1.NewTaskSummaryFromModel(models.Job, *int) → v1.TaskSummary
//   - v1.NewFailedTaskResponseFromModel(models.Job) → v1.FailedTaskResponse
//   - v1.NewInstanceResponseFromModel(models.Worker) → v1.InstanceResponse
//   - v1.NewConfigResponseFromModel(config.Dispatch) → v1.ConfigResponse
//   - v1.ApplyConfigUpdate(config.Dispatch, v1.ConfigUpdate) → config.Dispatch
//   - v1.NewStatsResponseFromModel(services.Stats) → v1.StatsResponse
//
// # Framework
//
// The package uses the Gin web framework. internal/server wires each
// Handler method to its route and attaches the shared logging/recovery
// middleware.
package handlers
