package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// tickInterval is how often the run loop attempts a dispatch pass and a
// queue-timeout sweep, mirroring the original's 0.5s poll.
const tickInterval = 500 * time.Millisecond

// Dispatcher owns the single goroutine that pairs idle workers with queued
// jobs and supervises every in-flight Executor.
type Dispatcher struct {
	queue    *queue.Queue
	pool     *pool.Pool
	executor Executor
	notifier Notifier
	cfg      atomic.Pointer[Config]
	waiters  *waitRegistry
	log      *zap.SugaredLogger

	runMu   sync.Mutex
	running map[string]*runningEntry

	ctx    context.Context
	cancel context.CancelFunc
	stopWg sync.WaitGroup
}

func New(q *queue.Queue, p *pool.Pool, executor Executor, notifier Notifier, cfg Config) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		pool:     p,
		executor: executor,
		notifier: notifier,
		waiters:  newWaitRegistry(),
		running:  make(map[string]*runningEntry),
		log:      zap.S().Named("dispatch"),
	}
	d.cfg.Store(&cfg)
	return d
}

// SetConfig hot-swaps the tunables the run loop and in-flight Executors
// read; already-running executions keep the deadline they started with.
func (d *Dispatcher) SetConfig(cfg Config) {
	d.cfg.Store(&cfg)
}

func (d *Dispatcher) config() Config {
	return *d.cfg.Load()
}

// Start launches the run loop. Call Stop to shut it down.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.stopWg.Add(1)
	go d.run()
}

// Stop cancels the run loop and every in-flight Executor, then waits for
// the loop goroutine to return. It does not wait for Executors to unwind;
// callers that need that should wait on their own job futures first.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.stopWg.Wait()
}

func (d *Dispatcher) run() {
	defer d.stopWg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.checkQueueTimeouts()
			d.dispatchPending()
		}
	}
}

// Submit enqueues job for asynchronous completion and returns its 1-based
// queue position.
func (d *Dispatcher) Submit(job *models.Job) (int, error) {
	return d.queue.Enqueue(job)
}

// SubmitSync enqueues job and blocks until it reaches a terminal state or
// ctx is done. The waiter is registered before the job is enqueued so the
// dispatch loop can never resolve it before this call is listening.
func (d *Dispatcher) SubmitSync(ctx context.Context, job *models.Job) (*models.Job, error) {
	ch := d.waiters.register(job.ID)

	if _, err := d.queue.Enqueue(job); err != nil {
		d.waiters.forget(job.ID)
		return nil, err
	}

	select {
	case result := <-ch:
		return result, nil
	case <-ctx.Done():
		d.waiters.forget(job.ID)
		return nil, ctx.Err()
	}
}

// Wait blocks on an already-submitted job reaching a terminal state. It is
// the re-attach path for a caller that submitted asynchronously and later
// decides to wait (or a client that reconnects after a dropped request).
func (d *Dispatcher) Wait(ctx context.Context, jobID string) (*models.Job, error) {
	if j := d.queue.Get(jobID); j == nil {
		if _, ok := d.GetRunning(jobID); !ok {
			return nil, dispatcherrors.NewResourceNotFoundError("job", jobID)
		}
	}

	ch := d.waiters.register(jobID)
	select {
	case result := <-ch:
		return result, nil
	case <-ctx.Done():
		d.waiters.forget(jobID)
		return nil, ctx.Err()
	}
}

// GetRunning returns the in-flight job with id, if any.
func (d *Dispatcher) GetRunning(id string) (*models.Job, bool) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	e, ok := d.running[id]
	if !ok {
		return nil, false
	}
	return e.job.Clone(), true
}

// ListRunning returns a snapshot of every job currently in flight.
func (d *Dispatcher) ListRunning() []*models.Job {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	out := make([]*models.Job, 0, len(d.running))
	for _, e := range d.running {
		out = append(out, e.job.Clone())
	}
	return out
}

// Cancel terminates job id wherever it currently lives: a queued job is
// removed without ever starting; a running job has its context cancelled
// and is marked cancelled and finalized at once, without waiting for the
// Executor to return.
// Returns false if the job is unknown or already terminal.
func (d *Dispatcher) Cancel(id string) bool {
	if j := d.queue.Get(id); j != nil && d.queue.Remove(id) {
		now := time.Now()
		j.Status = models.JobCancelled
		j.CompletedAt = &now
		j.Error = dispatcherrors.NewCancelledError().Error()
		d.finalize(j)
		return true
	}

	d.runMu.Lock()
	e, ok := d.running[id]
	if !ok {
		d.runMu.Unlock()
		return false
	}
	delete(d.running, id)
	d.runMu.Unlock()

	e.cancel()
	now := time.Now()
	e.job.Status = models.JobCancelled
	e.job.CompletedAt = &now
	e.job.Error = dispatcherrors.NewCancelledError().Error()
	d.finalize(e.job)
	return true
}

// dispatchPending pairs idle workers with head-of-queue jobs until no
// eligible pair remains. Runs only from the single run-loop goroutine, so
// a worker selected as idle cannot be raced by another dispatch pass.
func (d *Dispatcher) dispatchPending() {
	for {
		w := d.pool.SelectIdle()
		if w == nil {
			return
		}
		j := d.queue.Dequeue()
		if j == nil {
			return
		}
		if !d.pool.TryBind(w.ID, j.ID) {
			// the worker was disabled or claimed between selection and bind
			// (a health-probe demotion can race here); give the job back
			// and let the next tick re-evaluate.
			_ = d.queue.EnqueueAtHead(j)
			continue
		}
		d.startExecutor(w, j)
	}
}

func (d *Dispatcher) startExecutor(worker *models.Worker, job *models.Job) {
	now := time.Now()
	job.Status = models.JobRunning
	job.StartedAt = &now
	job.WorkerID = worker.ID
	job.WorkerName = worker.Name
	d.pool.IncTotal(worker.ID)

	execCtx, cancel := context.WithTimeout(d.ctx, d.config().TaskTimeout)

	d.runMu.Lock()
	d.running[job.ID] = &runningEntry{job: job, cancel: cancel}
	d.runMu.Unlock()

	go d.execute(execCtx, worker, job)
}

func (d *Dispatcher) execute(ctx context.Context, worker *models.Worker, job *models.Job) {
	result, err := d.executor.Execute(ctx, worker, job.Payload, job.FileName)

	d.runMu.Lock()
	_, stillTracked := d.running[job.ID]
	if stillTracked {
		delete(d.running, job.ID)
	}
	d.runMu.Unlock()
	d.pool.Release(worker.ID)

	if !stillTracked {
		// Cancel() already removed and finalized this job; nothing left to do.
		return
	}

	switch {
	case err == nil:
		d.handleSuccess(job, result)
	case ctx.Err() == context.DeadlineExceeded:
		d.pool.IncFailed(worker.ID)
		d.handleFailure(job, dispatcherrors.NewExecutionTimeoutError(), models.JobTimeout)
	default:
		d.pool.IncFailed(worker.ID)
		d.handleFailure(job, err, models.JobFailed)
	}
}

func (d *Dispatcher) handleSuccess(job *models.Job, result map[string]any) {
	now := time.Now()
	job.Status = models.JobCompleted
	job.CompletedAt = &now
	job.Result = result
	d.finalize(job)
}

// handleFailure retries job if it has budget left, preserving its original
// CreatedAt so age-based ordering against other pending jobs is unaffected
// by the retry. The Python original never touches created_at on requeue;
// the retry delay is slept here, in the Executor's own goroutine, so it
// never blocks the dispatch loop.
func (d *Dispatcher) handleFailure(job *models.Job, cause error, terminalStatus models.JobStatus) {
	cfg := d.config()
	if job.RetryCount < cfg.MaxRetries {
		job.RetryCount++
		job.StartedAt = nil
		job.WorkerID = ""
		job.WorkerName = ""
		job.Status = models.JobPending

		go func(j *models.Job, delay time.Duration) {
			select {
			case <-time.After(delay):
			case <-d.ctx.Done():
				return
			}
			if err := d.queue.Enqueue(j); err != nil {
				d.log.Warnw("requeue after retry failed", "job_id", j.ID, "error", err)
			}
		}(job, cfg.RetryDelay)
		return
	}

	now := time.Now()
	job.Status = terminalStatus
	job.CompletedAt = &now
	job.Error = cause.Error()
	d.finalize(job)
}

// checkQueueTimeouts sweeps pending jobs for age past QueueTimeout,
// terminating any that have overstayed without ever starting.
func (d *Dispatcher) checkQueueTimeouts() {
	cfg := d.config()
	now := time.Now()
	for _, j := range d.queue.List() {
		if now.Sub(j.CreatedAt) <= cfg.QueueTimeout {
			continue
		}
		if !d.queue.Remove(j.ID) {
			continue
		}
		completed := now
		j.Status = models.JobTimeout
		j.CompletedAt = &completed
		j.Error = dispatcherrors.NewQueueTimeoutError().Error()
		d.finalize(j)
	}
}

func (d *Dispatcher) finalize(job *models.Job) {
	d.waiters.resolve(job)
	if d.notifier != nil {
		d.notifier.OnTerminal(job)
	}
}
