package services

import (
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
)

// Stats is the aggregate queue/worker/throughput snapshot served by
// GET /api/stats and pushed over the stats websocket, grounded on
// app/api/stats.py::get_stats.
type Stats struct {
	QueuePending int
	QueueRunning int

	TasksTotal     int
	TasksCompleted int
	TasksFailed    int

	InstancesTotal   int
	InstancesIdle    int
	InstancesBusy    int
	InstancesOffline int
}

// StatsService computes a point-in-time Stats snapshot from the live
// queue, pool and dispatcher state. Stateless: every call recomputes from
// current collaborator state, matching get_stats reading pool/queue/
// scheduler directly on every request rather than caching.
type StatsService struct {
	queue      *queue.Queue
	pool       *pool.Pool
	dispatcher *dispatch.Dispatcher
}

func NewStatsService(q *queue.Queue, p *pool.Pool, d *dispatch.Dispatcher) *StatsService {
	return &StatsService{queue: q, pool: p, dispatcher: d}
}

func (s *StatsService) Snapshot() Stats {
	workers := s.pool.List()
	running := s.dispatcher.ListRunning()

	stats := Stats{
		QueuePending: s.queue.Size(),
		QueueRunning: len(running),
	}

	for _, w := range workers {
		stats.InstancesTotal++
		stats.TasksTotal += w.TotalJobs
		stats.TasksFailed += w.FailedJobs

		switch {
		case w.Status == models.WorkerIdle && w.Enabled:
			stats.InstancesIdle++
		case w.Status == models.WorkerBusy:
			stats.InstancesBusy++
		case w.Status == models.WorkerOffline || w.Status == models.WorkerError:
			stats.InstancesOffline++
		}
	}

	stats.TasksCompleted = stats.TasksTotal - stats.TasksFailed
	return stats
}
