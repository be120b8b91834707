package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// JobService is the operation surface the HTTP handlers call for job
// submission, lookup and lifecycle control. It glues the in-memory queue
// and dispatch.Dispatcher (system of truth for anything not terminal) to
// the Store (system of record for history), grounded on app/api/tasks.py.
type JobService struct {
	queue      *queue.Queue
	dispatcher *dispatch.Dispatcher
	store      *store.Store
	cfg        func() config.Dispatch
}

func NewJobService(q *queue.Queue, d *dispatch.Dispatcher, st *store.Store, cfg func() config.Dispatch) *JobService {
	return &JobService{queue: q, dispatcher: d, store: st, cfg: cfg}
}

// SubmitParams mirrors the fields accepted by TaskCreate in the Python original.
type SubmitParams struct {
	Payload models.Payload
	Priority int
	Async    bool
}

// Submit admits a new job. When cfg.MaxQueueSize is reached it returns
// *dispatcherrors.QueueFullError (handlers map this to HTTP 429). When
// EnablePriority is false the requested priority is ignored and forced
// to 5, matching CenterConfig.enable_priority's behavior.
func (s *JobService) Submit(ctx context.Context, p SubmitParams) (*models.Job, int, error) {
	cfg := s.cfg()
	if s.queue.Size() >= cfg.MaxQueueSize {
		return nil, 0, dispatcherrors.NewQueueFullError(s.queue.Size(), cfg.MaxQueueSize)
	}

	priority := p.Priority
	if !cfg.EnablePriority {
		priority = 5
	}

	fileName, _ := p.Payload["file_name"].(string)
	job := &models.Job{
		ID:        uuid.NewString(),
		Payload:   p.Payload,
		FileName:  fileName,
		Priority:  priority,
		Status:    models.JobPending,
		CreatedAt: time.Now().UTC(),
	}

	// Best-effort persistence: a write failure must not block admission,
	// the same tolerance app/api/tasks.py logs and continues past.
	if s.store != nil {
		if err := s.store.Job().Upsert(ctx, job); err != nil {
			zap.S().Named("job_service").Errorw("failed to persist submitted job", "job_id", job.ID, "error", err)
		}
	}

	if p.Async {
		position, err := s.dispatcher.Submit(job)
		if err != nil {
			return nil, 0, err
		}
		return job, position, nil
	}

	completed, err := s.dispatcher.SubmitSync(ctx, job)
	if err != nil {
		return nil, 0, err
	}
	return completed, 0, nil
}

// Get returns a job by id, checking the queue and dispatcher's running set
// before falling back to history, the way get_task checks queue/scheduler
// before returning a 404.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, int, error) {
	if j := s.queue.Get(id); j != nil {
		return j, s.queue.Position(id), nil
	}
	if j, ok := s.dispatcher.GetRunning(id); ok {
		return j, 0, nil
	}

	j, err := s.store.Job().Get(ctx, id)
	if err != nil {
		return nil, 0, dispatcherrors.NewResourceNotFoundError("job", id)
	}
	return j, 0, nil
}

// ListPending returns in-flight queued jobs, authoritative over history for
// accurate queue position, matching list_tasks's status="pending" branch.
func (s *JobService) ListPending() []*models.Job {
	return s.queue.List()
}

// Position returns a pending job's 1-based position in the queue, or -1
// if the job is not currently queued.
func (s *JobService) Position(id string) int {
	return s.queue.Position(id)
}

// ListRunning returns in-flight running jobs, matching list_tasks's
// status="running" branch.
func (s *JobService) ListRunning() []*models.Job {
	return s.dispatcher.ListRunning()
}

// ListHistoryParams filters jobs already written to the store.
type ListHistoryParams struct {
	Status        string
	Page, PerPage int
}

// ListHistory queries the Store for completed/failed/timeout/cancelled jobs
// (or all statuses when Status is empty), matching list_tasks's database
// branch for any status other than pending/running.
func (s *JobService) ListHistory(ctx context.Context, p ListHistoryParams) ([]*models.Job, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 50
	}

	var opts []store.ListOption
	if p.Status != "" {
		opts = append(opts, store.ByStatus(p.Status))
	}
	total, err := s.store.Job().Count(ctx, opts...)
	if err != nil {
		return nil, 0, err
	}

	opts = append(opts, store.WithNewestFirst(),
		store.WithLimit(uint64(p.PerPage)), store.WithOffset(uint64((p.Page-1)*p.PerPage)))
	jobs, err := s.store.Job().List(ctx, opts...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListFailed returns every failed job in history, matching
// GET /api/tasks/failed/list.
func (s *JobService) ListFailed(ctx context.Context) ([]*models.Job, error) {
	return s.store.Job().List(ctx, store.ByStatus(string(models.JobFailed)), store.WithNewestFirst())
}

// Cancel cancels a pending or running job. Returns false if the job is
// unknown or already terminal, matching cancel_task's 404 branch.
func (s *JobService) Cancel(id string) bool {
	return s.dispatcher.Cancel(id)
}

// Retry re-admits a single failed job for another attempt, resetting its
// retry bookkeeping, matching retry_task.
func (s *JobService) Retry(ctx context.Context, id string) (bool, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		return false, nil
	}
	if job.Status != models.JobFailed && job.Status != models.JobTimeout {
		return false, nil
	}

	job.Status = models.JobPending
	job.RetryCount = 0
	job.StartedAt = nil
	job.CompletedAt = nil
	job.WorkerID = ""
	job.WorkerName = ""
	job.Error = ""
	job.CreatedAt = time.Now().UTC()

	if _, err := s.dispatcher.Submit(job); err != nil {
		return false, err
	}
	return true, nil
}

// RetryAll re-admits every failed job in history, matching retry_all_tasks,
// and returns the number requeued.
func (s *JobService) RetryAll(ctx context.Context) (int, error) {
	failed, err := s.store.Job().List(ctx, store.ByStatus(string(models.JobFailed)))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, job := range failed {
		ok, err := s.Retry(ctx, job.ID)
		if err != nil {
			zap.S().Named("job_service").Errorw("failed to requeue job", "job_id", job.ID, "error", err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}
