// Package dispatch pairs idle workers with queued jobs and runs each
// handoff to completion, generalizing pkg/scheduler's worker-pool/futures
// design (Work/Result/Future) into a domain-specific dispatcher built
// around a priority queue and a worker pool instead of a generic function
// queue. The run-loop shape (sweep-then-dispatch-then-sleep, a single
// goroutine owning pairing decisions) is grounded on
// app/services/scheduler.py's _run_loop/_dispatch_pending_tasks.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/tupyy/dispatch-agent/internal/models"
)

// Executor performs the outbound call that carries out a job on a worker.
// pkg/workerclient.Client satisfies this; tests substitute a fake.
type Executor interface {
	Execute(ctx context.Context, worker *models.Worker, payload models.Payload, fileName string) (map[string]any, error)
}

// Notifier is told about every job that reaches a terminal state, so a
// caller can persist history without the dispatcher depending on storage.
type Notifier interface {
	OnTerminal(job *models.Job)
}

// Config holds the tunables the dispatch loop consults on every tick. A
// Dispatcher reads its Config through an atomic pointer so SetConfig takes
// effect without pausing in-flight work.
type Config struct {
	TaskTimeout         time.Duration
	QueueTimeout        time.Duration
	MaxRetries          int
	RetryDelay          time.Duration
	HealthCheckInterval time.Duration
	InstanceTimeout     time.Duration
}

// waitRegistry lets a synchronous submitter block until its job reaches a
// terminal state. A waiter is registered before the job becomes visible to
// the dispatch loop, closing the window in which a job could complete
// before anyone is listening for its result.
type waitRegistry struct {
	mu      sync.Mutex
	waiters map[string]chan *models.Job
}

func newWaitRegistry() *waitRegistry {
	return &waitRegistry{waiters: make(map[string]chan *models.Job)}
}

func (r *waitRegistry) register(id string) chan *models.Job {
	ch := make(chan *models.Job, 1)
	r.mu.Lock()
	r.waiters[id] = ch
	r.mu.Unlock()
	return ch
}

func (r *waitRegistry) forget(id string) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}

// resolve delivers job to its waiter, if any, and removes the registration.
// Safe to call for a job with no registered waiter (the async path).
func (r *waitRegistry) resolve(job *models.Job) {
	r.mu.Lock()
	ch, ok := r.waiters[job.ID]
	if ok {
		delete(r.waiters, job.ID)
	}
	r.mu.Unlock()
	if ok {
		ch <- job
	}
}

// runningEntry tracks a job whose Executor goroutine is in flight.
type runningEntry struct {
	job    *models.Job
	cancel context.CancelFunc
}
