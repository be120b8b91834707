package services

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
)

// ConfigService is the hot-update surface for the live Dispatch config,
// grounded on app/api/config.py::get_current_config/update_config. The
// in-memory value swaps atomically; every change is mirrored to the store.
// The stored value is not read back at process start: dispatchd boots
// from its flags and config file.
type ConfigService struct {
	current    atomic.Pointer[config.Dispatch]
	dispatcher *dispatch.Dispatcher
	store      *store.Store
}

func NewConfigService(initial config.Dispatch, d *dispatch.Dispatcher, st *store.Store) *ConfigService {
	s := &ConfigService{dispatcher: d, store: st}
	s.current.Store(&initial)
	return s
}

// Get returns the live configuration.
func (s *ConfigService) Get() config.Dispatch {
	return *s.current.Load()
}

// Update replaces the live configuration, propagates it to the dispatcher
// (hot update, in-flight work finishes against the old value) and
// persists it, matching update_config's set_global_config+save_config pair.
func (s *ConfigService) Update(ctx context.Context, next config.Dispatch) error {
	if err := config.Validate(&config.Configuration{Dispatch: next}); err != nil {
		return err
	}

	s.current.Store(&next)
	s.dispatcher.SetConfig(dispatch.Config{
		TaskTimeout:         next.TaskTimeout,
		QueueTimeout:        next.QueueTimeout,
		MaxRetries:          next.MaxRetries,
		RetryDelay:          next.RetryDelay,
		HealthCheckInterval: next.HealthCheckInterval,
		InstanceTimeout:     next.InstanceTimeout,
	})

	if err := s.store.Config().Save(ctx, next); err != nil {
		zap.S().Named("config_service").Errorw("failed to persist configuration update", "error", err)
	}
	return nil
}
