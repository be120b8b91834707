package store

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// JobStore persists job history. The dispatcher's queue and dispatch.Dispatcher
// own the live, in-memory truth for anything not yet terminal; JobStore is
// the system of record once a job reaches a terminal state (and a
// best-effort mirror before that, the way app/api/tasks.py writes a row at
// admission time and logs, but does not fail the request on, a write error).
type JobStore struct {
	db QueryInterceptor
}

func NewJobStore(db QueryInterceptor) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Upsert(ctx context.Context, j *models.Job) error {
	payload, err := json.Marshal(j.Payload)
	if err != nil {
		return err
	}
	var result []byte
	if j.Result != nil {
		if result, err = json.Marshal(j.Result); err != nil {
			return err
		}
	}

	_, err = s.db.ExecContext(ctx, queryUpsertJob,
		j.ID, string(j.Status), j.Priority, string(payload), j.FileName, j.CreatedAt,
		j.StartedAt, j.CompletedAt, j.WorkerID, j.WorkerName, j.Error, j.RetryCount,
		nullableString(result), j.ElapsedSeconds())
	return err
}

func (s *JobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, queryGetJob, id)
	j, err := scanJob(row)
	if err != nil {
		return nil, dispatcherrors.NewResourceNotFoundError("job", id)
	}
	return j, nil
}

// ListOption composes a filtered, paginated job history query, the way
// store.VMStore.List in the teacher composes squirrel.SelectBuilder.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByStatus(statuses ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		return b.Where(sq.Eq{"status": statuses})
	}
}

func ByWorkerID(id string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if id == "" {
			return b
		}
		return b.Where(sq.Eq{"worker_id": id})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder { return b.Limit(limit) }
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder { return b.Offset(offset) }
}

func WithNewestFirst() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder { return b.OrderBy("created_at DESC") }
}

func (s *JobStore) List(ctx context.Context, opts ...ListOption) ([]*models.Job, error) {
	builder := sq.Select(
		"id", "status", "priority", "payload", "file_name", "created_at", "started_at",
		"completed_at", "worker_id", "worker_name", "error", "retry_count", "result", "duration",
	).From("jobs")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *JobStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("jobs")
	for _, opt := range opts {
		builder = opt(builder)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func scanJob(row rowScanner) (*models.Job, error) {
	j := &models.Job{}
	var status, payload string
	var result sql.NullString
	var duration sql.NullFloat64

	if err := row.Scan(
		&j.ID, &status, &j.Priority, &payload, &j.FileName, &j.CreatedAt, &j.StartedAt,
		&j.CompletedAt, &j.WorkerID, &j.WorkerName, &j.Error, &j.RetryCount, &result, &duration,
	); err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	if payload != "" {
		json.Unmarshal([]byte(payload), &j.Payload)
	}
	if result.Valid && result.String != "" {
		json.Unmarshal([]byte(result.String), &j.Result)
	}
	if duration.Valid {
		j.Duration = &duration.Float64
	}
	return j, nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
