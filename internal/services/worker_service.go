package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// WorkerService is the operation surface the HTTP handlers call for worker
// registry CRUD and enable/disable, grounded on app/api/instances.py. The
// in-memory pool.Pool is authoritative for live status; Store mirrors
// registration. The pool is not repopulated from the store at startup.
type WorkerService struct {
	pool  *pool.Pool
	store *store.Store
}

func NewWorkerService(p *pool.Pool, st *store.Store) *WorkerService {
	return &WorkerService{pool: p, store: st}
}

// List returns every registered worker.
func (s *WorkerService) List() []*models.Worker {
	return s.pool.List()
}

// Add registers a new worker endpoint, matching add_instance.
func (s *WorkerService) Add(ctx context.Context, url, name, backend string) (*models.Worker, error) {
	w := s.pool.Add(url, name, backend)

	if err := s.store.Worker().Upsert(ctx, w); err != nil {
		zap.S().Named("worker_service").Errorw("failed to persist worker", "worker_id", w.ID, "error", err)
	}
	return w, nil
}

// Remove unregisters a worker. Fails with *dispatcherrors.WorkerNotFoundError
// if unknown, or the pool's busy error if the worker has a job in flight,
// matching remove_instance's 404/400 branches.
func (s *WorkerService) Remove(ctx context.Context, id string) error {
	if s.pool.Get(id) == nil {
		return dispatcherrors.NewWorkerNotFoundError(id)
	}

	if err := s.pool.Remove(id); err != nil {
		return err
	}

	if err := s.store.Worker().Delete(ctx, id); err != nil {
		zap.S().Named("worker_service").Errorw("failed to delete worker from store", "worker_id", id, "error", err)
	}
	return nil
}

// UpdateParams mirrors InstanceUpdate: every field optional, nil means "leave unchanged".
type UpdateParams struct {
	Name    *string
	URL     *string
	Backend *string
}

// Update patches a worker's identity fields. Rejects a URL change while a
// job is in flight, matching update_instance's 400 branch.
func (s *WorkerService) Update(ctx context.Context, id string, p UpdateParams) (*models.Worker, error) {
	w, err := s.pool.Update(id, pool.UpdateFields{Name: p.Name, URL: p.URL, Backend: p.Backend})
	if err != nil {
		return nil, err
	}

	if err := s.store.Worker().Upsert(ctx, w); err != nil {
		zap.S().Named("worker_service").Errorw("failed to persist worker update", "worker_id", id, "error", err)
	}
	return w, nil
}

// Enable re-admits a worker into dispatch pairing, matching enable_instance.
func (s *WorkerService) Enable(ctx context.Context, id string) error {
	if err := s.pool.Enable(id); err != nil {
		return err
	}
	if w := s.pool.Get(id); w != nil {
		if err := s.store.Worker().Upsert(ctx, w); err != nil {
			zap.S().Named("worker_service").Errorw("failed to persist worker enable", "worker_id", id, "error", err)
		}
	}
	return nil
}

// Disable excludes a worker from dispatch pairing, matching disable_instance.
// A job already in flight on the worker continues to completion; the next
// dispatch tick simply will not pick this worker again.
func (s *WorkerService) Disable(ctx context.Context, id string) error {
	if err := s.pool.Disable(id); err != nil {
		return err
	}
	if w := s.pool.Get(id); w != nil {
		if err := s.store.Worker().Upsert(ctx, w); err != nil {
			zap.S().Named("worker_service").Errorw("failed to persist worker disable", "worker_id", id, "error", err)
		}
	}
	return nil
}
