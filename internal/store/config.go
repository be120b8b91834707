package store

import (
	"context"
	"encoding/json"

	"github.com/creasty/defaults"

	"github.com/tupyy/dispatch-agent/internal/config"
)

// ConfigStore persists the live Dispatch configuration as one JSON-encoded
// row per field, grounded on app/services/database.py's load_config/
// save_config pair from the Python original.
type ConfigStore struct {
	db QueryInterceptor
}

func NewConfigStore(db QueryInterceptor) *ConfigStore {
	return &ConfigStore{db: db}
}

var configFields = []string{
	"task_timeout", "queue_timeout", "max_queue_size", "enable_priority",
	"max_retries", "retry_delay", "health_check_interval", "instance_timeout",
}

// Load returns the persisted Dispatch config, falling back to the
// documented defaults for any field with no stored row.
func (s *ConfigStore) Load(ctx context.Context) (config.Dispatch, error) {
	d := config.Dispatch{}
	if err := defaults.Set(&d); err != nil {
		return d, err
	}

	rows, err := s.db.QueryContext(ctx, queryGetAllConfig)
	if err != nil {
		return d, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return d, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return d, err
	}

	for key, raw := range values {
		switch key {
		case "task_timeout":
			json.Unmarshal([]byte(raw), &d.TaskTimeout)
		case "queue_timeout":
			json.Unmarshal([]byte(raw), &d.QueueTimeout)
		case "max_queue_size":
			json.Unmarshal([]byte(raw), &d.MaxQueueSize)
		case "enable_priority":
			json.Unmarshal([]byte(raw), &d.EnablePriority)
		case "max_retries":
			json.Unmarshal([]byte(raw), &d.MaxRetries)
		case "retry_delay":
			json.Unmarshal([]byte(raw), &d.RetryDelay)
		case "health_check_interval":
			json.Unmarshal([]byte(raw), &d.HealthCheckInterval)
		case "instance_timeout":
			json.Unmarshal([]byte(raw), &d.InstanceTimeout)
		}
	}
	return d, nil
}

// Save persists every Dispatch field as its own row.
func (s *ConfigStore) Save(ctx context.Context, d config.Dispatch) error {
	values := map[string]any{
		"task_timeout":          d.TaskTimeout,
		"queue_timeout":         d.QueueTimeout,
		"max_queue_size":        d.MaxQueueSize,
		"enable_priority":       d.EnablePriority,
		"max_retries":           d.MaxRetries,
		"retry_delay":           d.RetryDelay,
		"health_check_interval": d.HealthCheckInterval,
		"instance_timeout":      d.InstanceTimeout,
	}
	for _, key := range configFields {
		encoded, err := json.Marshal(values[key])
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, queryUpsertConfigField, key, string(encoded)); err != nil {
			return err
		}
	}
	return nil
}
