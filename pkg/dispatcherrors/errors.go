// Package dispatcherrors implements the error taxonomy the dispatch core
// and its collaborators use to classify failures, grounded on the
// constructor/predicate convention the teacher repo applies to its own
// pkg/errors package (referenced from internal/store/configuration.go and
// internal/services/console.go: srvErrors.NewXError / errors.IsXError /
// type-switch on *errors.XError).
package dispatcherrors

import "fmt"

// QueueFullError is returned when admission is rejected because the queue
// has reached max_queue_size.
type QueueFullError struct {
	Size, Max int
}

func NewQueueFullError(size, max int) *QueueFullError {
	return &QueueFullError{Size: size, Max: max}
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("queue is full (%d/%d)", e.Size, e.Max)
}

func IsQueueFullError(err error) bool {
	_, ok := err.(*QueueFullError)
	return ok
}

// DuplicateIDError is returned when a job id is already present in the queue.
type DuplicateIDError struct {
	ID string
}

func NewDuplicateIDError(id string) *DuplicateIDError {
	return &DuplicateIDError{ID: id}
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("job %s already queued", e.ID)
}

func IsDuplicateIDError(err error) bool {
	_, ok := err.(*DuplicateIDError)
	return ok
}

// WorkerNotFoundError signals an internal inconsistency during dispatch: the
// pool no longer has the worker id the queue pop was paired with.
type WorkerNotFoundError struct {
	ID string
}

func NewWorkerNotFoundError(id string) *WorkerNotFoundError {
	return &WorkerNotFoundError{ID: id}
}

func (e *WorkerNotFoundError) Error() string {
	return fmt.Sprintf("worker %s not found", e.ID)
}

func IsWorkerNotFoundError(err error) bool {
	_, ok := err.(*WorkerNotFoundError)
	return ok
}

// ExecutionTimeoutError signals the outbound call exceeded task_timeout.
type ExecutionTimeoutError struct{}

func NewExecutionTimeoutError() *ExecutionTimeoutError { return &ExecutionTimeoutError{} }

func (e *ExecutionTimeoutError) Error() string { return "Task execution timeout" }

func IsExecutionTimeoutError(err error) bool {
	_, ok := err.(*ExecutionTimeoutError)
	return ok
}

// QueueTimeoutError signals a job aged past queue_timeout while pending.
type QueueTimeoutError struct{}

func NewQueueTimeoutError() *QueueTimeoutError { return &QueueTimeoutError{} }

func (e *QueueTimeoutError) Error() string { return "Queue timeout" }

func IsQueueTimeoutError(err error) bool {
	_, ok := err.(*QueueTimeoutError)
	return ok
}

// RemoteError wraps a non-2xx response or transport failure from a worker.
type RemoteError struct {
	StatusCode int
	Message    string
}

func NewRemoteError(statusCode int, message string) *RemoteError {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("worker transport error: %s", e.Message)
	}
	return fmt.Sprintf("worker returned %d: %s", e.StatusCode, e.Message)
}

func IsRemoteError(err error) bool {
	_, ok := err.(*RemoteError)
	return ok
}

// CancelledError marks a job terminated by admin cancellation.
type CancelledError struct{}

func NewCancelledError() *CancelledError { return &CancelledError{} }

func (e *CancelledError) Error() string { return "job cancelled" }

func IsCancelledError(err error) bool {
	_, ok := err.(*CancelledError)
	return ok
}

// InvalidConfigError is returned when a config PATCH fails validation.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func NewInvalidConfigError(field, reason string) *InvalidConfigError {
	return &InvalidConfigError{Field: field, Reason: reason}
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config field %q: %s", e.Field, e.Reason)
}

func IsInvalidConfigError(err error) bool {
	_, ok := err.(*InvalidConfigError)
	return ok
}

// ResourceNotFoundError marks a lookup miss in the store layer (job history,
// worker registration, configuration row).
type ResourceNotFoundError struct {
	Resource string
	ID       string
}

func NewResourceNotFoundError(resource, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Resource: resource, ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	_, ok := err.(*ResourceNotFoundError)
	return ok
}
