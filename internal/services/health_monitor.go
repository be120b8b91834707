package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/pool"
)

// HealthMonitor runs periodic worker health probes in the background,
// grounded on app/main.py's health_check_loop: tick, probe every worker,
// sleep, repeat. A panic from a round is recovered and logged, and the
// next round runs on the next tick.
type HealthMonitor struct {
	pool  *pool.Pool
	cfg   func() config.Dispatch
	mu    sync.Mutex
	close chan struct{}
}

func NewHealthMonitor(p *pool.Pool, cfg func() config.Dispatch) *HealthMonitor {
	return &HealthMonitor{pool: p, cfg: cfg, close: make(chan struct{})}
}

// Start launches the monitor loop. Safe to call once; call Stop before
// discarding the monitor.
func (m *HealthMonitor) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *HealthMonitor) Stop() {
	close(m.close)
}

func (m *HealthMonitor) run(ctx context.Context) {
	log := zap.S().Named("health_monitor")
	interval := m.cfg().HealthCheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.close:
			return
		case <-tick.C:
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("health check panicked", "error", r)
				}
			}()
			m.pool.HealthCheck(ctx, m.cfg().InstanceTimeout)
		}()

		if next := m.cfg().HealthCheckInterval; next > 0 && next != interval {
			interval = next
			tick.Reset(interval)
		}
	}
}
