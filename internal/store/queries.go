package store

// Config queries. Config is persisted as one row per field, JSON-encoding
// the value, the way app/services/database.py's load_config/save_config
// treat the original's CenterConfig.
const (
	queryGetAllConfig = `SELECT key, value FROM config`

	queryUpsertConfigField = `
		INSERT INTO config (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value`
)

// Worker queries.
const (
	queryUpsertWorker = `
		INSERT INTO workers (id, name, url, backend, enabled, total_jobs, failed_jobs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			url         = EXCLUDED.url,
			backend     = EXCLUDED.backend,
			enabled     = EXCLUDED.enabled,
			total_jobs  = EXCLUDED.total_jobs,
			failed_jobs = EXCLUDED.failed_jobs`

	queryGetWorker = `
		SELECT id, name, url, backend, enabled, total_jobs, failed_jobs, created_at
		FROM workers WHERE id = ?`

	queryListWorkers = `
		SELECT id, name, url, backend, enabled, total_jobs, failed_jobs, created_at
		FROM workers ORDER BY created_at`

	queryDeleteWorker = `DELETE FROM workers WHERE id = ?`
)

// Job queries.
const (
	queryUpsertJob = `
		INSERT INTO jobs (id, status, priority, payload, file_name, created_at, started_at,
			completed_at, worker_id, worker_name, error, retry_count, result, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status       = EXCLUDED.status,
			started_at   = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			worker_id    = EXCLUDED.worker_id,
			worker_name  = EXCLUDED.worker_name,
			error        = EXCLUDED.error,
			retry_count  = EXCLUDED.retry_count,
			result       = EXCLUDED.result,
			duration     = EXCLUDED.duration`

	queryGetJob = `
		SELECT id, status, priority, payload, file_name, created_at, started_at,
			completed_at, worker_id, worker_name, error, retry_count, result, duration
		FROM jobs WHERE id = ?`
)
