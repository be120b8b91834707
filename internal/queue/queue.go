// Package queue implements a priority queue of pending jobs: a binary heap
// over Job records plus a hash set of live ids, so cancellation is a lazy
// tombstone rather than a heap rebuild. Grounded on
// app/services/queue_manager.py (heapq + dict of live ids) from the Python
// original, reshaped into idiomatic Go around container/heap.Interface.
package queue

import (
	"container/heap"
	"sync"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

// Queue is a concurrency-safe priority queue of pending jobs. All public
// operations take a single mutex; no operation performs I/O while holding it.
type Queue struct {
	mu    sync.Mutex
	heap  jobHeap
	alive map[string]*models.Job
}

func New() *Queue {
	return &Queue{
		alive: make(map[string]*models.Job),
	}
}

// Enqueue inserts a job and returns its 1-based position under the
// canonical ordering. Fails with DuplicateIDError if the id is already live.
func (q *Queue) Enqueue(j *models.Job) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.alive[j.ID]; ok {
		return 0, dispatcherrors.NewDuplicateIDError(j.ID)
	}

	q.alive[j.ID] = j
	heap.Push(&q.heap, j)
	return q.positionLocked(j.ID), nil
}

// EnqueueAtHead re-inserts a job that already holds its original position
// under the ordering (used when a dispatch pairing must be undone).
// Ordering is canonical (priority, created_at), so this is the same as
// Enqueue for a job whose CreatedAt predates everything else in its band;
// the name documents intent at call sites.
func (q *Queue) EnqueueAtHead(j *models.Job) error {
	_, err := q.Enqueue(j)
	return err
}

// Dequeue removes and returns the single highest-priority job, skipping
// tombstoned entries lazily. Returns nil when empty.
func (q *Queue) Dequeue() *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.heap.Len() > 0 {
		j := heap.Pop(&q.heap).(*models.Job)
		if _, ok := q.alive[j.ID]; ok {
			delete(q.alive, j.ID)
			return j
		}
	}
	return nil
}

// Peek returns the highest-priority job without removing it.
func (q *Queue) Peek() *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.heap.Len() > 0 {
		top := q.heap[0]
		if _, ok := q.alive[top.ID]; ok {
			return top
		}
		heap.Pop(&q.heap)
	}
	return nil
}

// Remove tombstones id so a future Dequeue/Peek skips it. Returns true if
// the id was live.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.alive[id]; !ok {
		return false
	}
	delete(q.alive, id)
	return true
}

// Get returns the live job with id, or nil.
func (q *Queue) Get(id string) *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.alive[id]
}

// Size returns the number of live (non-tombstoned) jobs.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.alive)
}

// List returns an ordered snapshot of live jobs.
func (q *Queue) List() []*models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sortedLiveLocked()
}

// Position returns the 1-based position of id under the canonical
// ordering, or -1 if absent.
func (q *Queue) Position(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.positionLocked(id)
}

func (q *Queue) positionLocked(id string) int {
	for i, j := range q.sortedLiveLocked() {
		if j.ID == id {
			return i + 1
		}
	}
	return -1
}

func (q *Queue) sortedLiveLocked() []*models.Job {
	out := make([]*models.Job, 0, len(q.alive))
	for _, j := range q.heap {
		if _, ok := q.alive[j.ID]; ok {
			out = append(out, j)
		}
	}
	sortJobs(out)
	return out
}

// jobHeap implements container/heap.Interface over *models.Job using the
// canonical (priority desc, created_at asc) ordering.
type jobHeap []*models.Job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*models.Job)) }
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// sortJobs orders jobs canonically without mutating the heap's internal
// layout; used for List/Position snapshots only.
func sortJobs(jobs []*models.Job) {
	// simple insertion sort: snapshots are small and this avoids importing
	// sort for a one-call-site comparator.
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].Less(jobs[j-1]); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}
