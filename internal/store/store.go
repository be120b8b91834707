package store

import (
	"context"
	"database/sql"

	"github.com/tupyy/dispatch-agent/internal/store/migrations"
)

// Store provides access to all storage repositories.
type Store struct {
	db     *sql.DB
	config *ConfigStore
	worker *WorkerStore
	job    *JobStore
}

func NewStore(db *sql.DB) *Store {
	interceptor := newLoggingInterceptor(db)
	return &Store{
		db:     db,
		config: NewConfigStore(interceptor),
		worker: NewWorkerStore(interceptor),
		job:    NewJobStore(interceptor),
	}
}

// Migrate applies every pending local migration.
func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, s.db)
}

func (s *Store) Config() *ConfigStore {
	return s.config
}

func (s *Store) Worker() *WorkerStore {
	return s.worker
}

func (s *Store) Job() *JobStore {
	return s.job
}

func (s *Store) Close() error {
	return s.db.Close()
}
