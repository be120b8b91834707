// Package services implements the business logic layer for the dispatch
// agent, sitting between the HTTP handlers and the in-memory
// queue/pool/dispatch core plus the persistent store.
//
// # Architecture Overview
//
// The services layer follows the same design principles as the core:
//   - Interface-based dependencies for testability (dispatch.Executor/Notifier)
//   - Mutex-protected state owned by the collaborators it wraps, not
//     duplicated here
//   - A service holds references to its collaborators and composes their
//     operations into the shape handlers need; it owns no locks of its own
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)
//	    │
//	    ▼
//	Services Layer
//	    ├── JobService ─────► Queue, Dispatcher, Store
//	    ├── WorkerService ──► Pool, Store
//	    ├── HealthMonitor ──► Pool, Config
//	    ├── StatsService ──► Queue, Pool, Dispatcher
//	    ├── ConfigService ─► Dispatcher, Store
//	    └── StoreNotifier ─► Store (implements dispatch.Notifier)
//
// # JobService
//
// JobService is the submission and lookup surface for jobs, grounded on
// app/api/tasks.py. Submission enforces MaxQueueSize (returns
// *dispatcherrors.QueueFullError) and EnablePriority (forces priority to 5
// when disabled) before handing the job to the queue/dispatcher. Lookup
// checks the queue, then the dispatcher's running set, then the store, in
// that order, so an in-flight job's live position/state is never shadowed
// by a stale row in history.
//
// Usage:
//
//	jobs := services.NewJobService(queue, dispatcher, store, func() config.Dispatch { return cfg })
//	job, position, err := jobs.Submit(ctx, services.SubmitParams{Payload: p, Async: true})
//	job, position, err = jobs.Get(ctx, job.ID)
//	ok := jobs.Cancel(job.ID)
//
// # WorkerService
//
// WorkerService is the worker registry CRUD surface, grounded on
// app/api/instances.py. Pool is authoritative for live status; every
// mutation is mirrored to the store as a best-effort write (logged, not
// fatal, matching the Python original's tolerance for a failed
// database.* call after the in-memory pool has already been updated).
//
// Usage:
//
//	workers := services.NewWorkerService(pool, store)
//	w, err := workers.Add(ctx, "http://worker:8080", "worker-1", "pipeline")
//	err = workers.Disable(ctx, w.ID)
//
// # HealthMonitor
//
// HealthMonitor runs pool.Pool.HealthCheck on a ticker derived from
// config.Dispatch.HealthCheckInterval, grounded on app/main.py's
// health_check_loop. A panic raised by the pool.Pool.HealthCheck call is
// recovered and logged rather than killing the loop. A panic inside one of
// the per-worker probe goroutines that HealthCheck starts is not recovered.
//
// # StatsService
//
// StatsService composes a single read-only snapshot (queue depth, worker
// counts by status, running/historical task totals) from Queue, Pool and
// Dispatcher on every call, grounded on app/api/stats.py. It holds no
// cache: callers polling via GET /api/stats or the periodic
// /api/stats/ws broadcaster always see live state.
//
// # ConfigService
//
// ConfigService owns the live, hot-swappable config.Dispatch value
// consulted by JobService and the dispatcher's retry/timeout logic.
// Update validates the merged configuration before swapping it in and
// persisting it to the store, so a bad PATCH never reaches either the
// in-memory dispatcher or the database.
//
// # StoreNotifier
//
// StoreNotifier is the production dispatch.Notifier: it persists a job's
// terminal state (completed, failed, cancelled) to the store so job
// history survives process restarts. A failed persist is logged and
// swallowed, matching WorkerService's tolerance for a store write that
// loses a race with process shutdown.
//
// # Thread Safety
//
// All services are themselves stateless composition layers: thread
// safety is provided by Queue, Pool, Dispatcher and Store, each of which
// already guards its own state.
package services
