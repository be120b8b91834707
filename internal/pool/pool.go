// Package pool implements the worker-pool state machine: registry,
// concurrency-safe field mutation, idle selection and periodic health
// probing. Grounded 1:1 on the operation surface of
// app/services/instance_pool.py (Python original), restructured around a
// mutex-guarded map the way the teacher's services package guards its own
// state (internal/services/console.go).
package pool

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tupyy/dispatch-agent/internal/models"
)

// Prober performs the outbound health-check call. Exercised by HealthCheck;
// production wiring uses HTTPProber, tests substitute a fake.
type Prober interface {
	Probe(ctx context.Context, worker *models.Worker) error
}

// HTTPProber probes a worker's /health endpoint over HTTP. It does not fall
// back to /openapi.json when /health fails.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{Client: &http.Client{}}
}

func (p *HTTPProber) Probe(ctx context.Context, worker *models.Worker) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, worker.URL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &nonOKStatus{code: resp.StatusCode}
	}
	return nil
}

type nonOKStatus struct{ code int }

func (e *nonOKStatus) Error() string { return http.StatusText(e.code) }

// Pool is the concurrency-safe registry of workers.
type Pool struct {
	mu      sync.Mutex
	workers map[string]*models.Worker
	order   []string // insertion order, for deterministic SelectIdle scanning
	prober  Prober
}

func New(prober Prober) *Pool {
	return &Pool{
		workers: make(map[string]*models.Worker),
		prober:  prober,
	}
}

// Add registers a new worker in the offline state, enabled by default.
func (p *Pool) Add(url, name, backend string) *models.Worker {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := &models.Worker{
		ID:        uuid.NewString(),
		Name:      name,
		URL:       url,
		Backend:   backend,
		Status:    models.WorkerOffline,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	p.workers[w.ID] = w
	p.order = append(p.order, w.ID)
	return w.Clone()
}

// Remove deregisters a worker. Fails if it currently carries a job.
func (p *Pool) Remove(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.workers[id]
	if !ok {
		return errNotFound(id)
	}
	if w.CurrentJobID != "" {
		return errBusy(id)
	}
	delete(p.workers, id)
	for i, wid := range p.order {
		if wid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateFields is the set of worker fields Update may change.
type UpdateFields struct {
	Name    *string
	URL     *string
	Backend *string
}

// Update mutates name/url/backend. Fails if changing URL while busy.
func (p *Pool) Update(id string, fields UpdateFields) (*models.Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.workers[id]
	if !ok {
		return nil, errNotFound(id)
	}
	if fields.URL != nil && w.Status == models.WorkerBusy {
		return nil, errBusy(id)
	}
	if fields.Name != nil {
		w.Name = *fields.Name
	}
	if fields.URL != nil {
		w.URL = *fields.URL
	}
	if fields.Backend != nil {
		w.Backend = *fields.Backend
	}
	return w.Clone(), nil
}

// Enable sets enabled=true and status=idle (the next probe corrects it).
func (p *Pool) Enable(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[id]
	if !ok {
		return errNotFound(id)
	}
	w.Enabled = true
	w.Status = models.WorkerIdle
	return nil
}

// Disable sets enabled=false and forces status=disabled.
func (p *Pool) Disable(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[id]
	if !ok {
		return errNotFound(id)
	}
	w.Enabled = false
	w.Status = models.WorkerDisabled
	return nil
}

func (p *Pool) SetStatus(id string, status models.WorkerStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.workers[id]; ok {
		w.Status = status
	}
}

func (p *Pool) SetCurrentJob(id, jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.workers[id]; ok {
		w.CurrentJobID = jobID
	}
}

func (p *Pool) IncTotal(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.workers[id]; ok {
		w.TotalJobs++
	}
}

func (p *Pool) IncFailed(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.workers[id]; ok {
		w.FailedJobs++
	}
}

func (p *Pool) UpdateHeartbeat(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.workers[id]; ok {
		now := time.Now()
		w.LastHeartbeat = &now
	}
}

// Get returns a clone of the worker with id, or nil.
func (p *Pool) Get(id string) *models.Worker {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[id]
	if !ok {
		return nil
	}
	return w.Clone()
}

// List returns clones of all workers in insertion order.
func (p *Pool) List() []*models.Worker {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.Worker, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.workers[id].Clone())
	}
	return out
}

// SelectIdle scans in insertion order and returns (and binds nothing yet)
// the first enabled, idle worker, or nil.
func (p *Pool) SelectIdle() *models.Worker {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.order {
		w := p.workers[id]
		if w.Enabled && w.Status == models.WorkerIdle {
			return w.Clone()
		}
	}
	return nil
}

// TryBind atomically transitions worker id from idle to busy with the given
// job id, returning false if the worker is no longer eligible (raced by a
// disable, a health-probe demotion, or another dispatch). This is the
// pairing-atomicity primitive the dispatcher uses when handing a job off.
func (p *Pool) TryBind(id, jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[id]
	if !ok || !w.Enabled || w.Status != models.WorkerIdle {
		return false
	}
	w.Status = models.WorkerBusy
	w.CurrentJobID = jobID
	return true
}

// Release returns a worker to idle (if still enabled) and clears its job
// binding. Runs in every Executor completion path regardless of outcome.
func (p *Pool) Release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[id]
	if !ok {
		return
	}
	if w.Enabled {
		w.Status = models.WorkerIdle
	}
	w.CurrentJobID = ""
}

// HealthCheck concurrently probes every enabled worker. A busy worker's
// status is never overwritten by a probe result.
func (p *Pool) HealthCheck(ctx context.Context, timeout time.Duration) {
	for _, w := range p.List() {
		if !w.Enabled {
			continue
		}
		go p.probeOne(ctx, w, timeout)
	}
}

func (p *Pool) probeOne(ctx context.Context, w *models.Worker, timeout time.Duration) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.prober.Probe(probeCtx, w)

	p.mu.Lock()
	defer p.mu.Unlock()
	current, ok := p.workers[w.ID]
	if !ok {
		return
	}

	if err == nil {
		now := time.Now()
		current.LastHeartbeat = &now
		if current.Status == models.WorkerOffline {
			current.Status = models.WorkerIdle
		}
		return
	}

	// A worker with a job in flight keeps its status regardless of probe
	// outcome — demoting it here could race a just-completed dispatch.
	if current.CurrentJobID != "" {
		return
	}

	if _, transport := err.(*nonOKStatus); transport {
		current.Status = models.WorkerError
	} else {
		current.Status = models.WorkerOffline
	}
}

type poolError struct {
	id   string
	kind string
}

func (e *poolError) Error() string { return e.kind + ": worker " + e.id }

func errNotFound(id string) error { return &poolError{id: id, kind: "not found"} }
func errBusy(id string) error     { return &poolError{id: id, kind: "busy"} }

// IsNotFound reports whether err was produced by a missing-worker lookup.
func IsNotFound(err error) bool {
	pe, ok := err.(*poolError)
	return ok && pe.kind == "not found"
}

// IsBusy reports whether err was produced by a busy-worker conflict.
func IsBusy(err error) bool {
	pe, ok := err.(*poolError)
	return ok && pe.kind == "busy"
}
