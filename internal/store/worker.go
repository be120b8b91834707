package store

import (
	"context"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// WorkerStore persists worker registrations, grounded on
// app/services/database.py's save_instance/load_instances pair. Status
// fields (enabled aside) are intentionally not persisted: they are live
// pool state the health checker re-derives on startup.
type WorkerStore struct {
	db QueryInterceptor
}

func NewWorkerStore(db QueryInterceptor) *WorkerStore {
	return &WorkerStore{db: db}
}

func (s *WorkerStore) Upsert(ctx context.Context, w *models.Worker) error {
	_, err := s.db.ExecContext(ctx, queryUpsertWorker,
		w.ID, w.Name, w.URL, w.Backend, w.Enabled, w.TotalJobs, w.FailedJobs, w.CreatedAt)
	return err
}

func (s *WorkerStore) Get(ctx context.Context, id string) (*models.Worker, error) {
	row := s.db.QueryRowContext(ctx, queryGetWorker, id)
	w, err := scanWorker(row)
	if err != nil {
		return nil, dispatcherrors.NewResourceNotFoundError("worker", id)
	}
	return w, nil
}

func (s *WorkerStore) List(ctx context.Context) ([]*models.Worker, error) {
	rows, err := s.db.QueryContext(ctx, queryListWorkers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Worker
	for rows.Next() {
		w := &models.Worker{}
		if err := rows.Scan(&w.ID, &w.Name, &w.URL, &w.Backend, &w.Enabled, &w.TotalJobs, &w.FailedJobs, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *WorkerStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, queryDeleteWorker, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*models.Worker, error) {
	w := &models.Worker{}
	if err := row.Scan(&w.ID, &w.Name, &w.URL, &w.Backend, &w.Enabled, &w.TotalJobs, &w.FailedJobs, &w.CreatedAt); err != nil {
		return nil, err
	}
	return w, nil
}
