package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

const defaultPageSize = 50

// CreateTask submits a new job (POST /api/tasks). The body is either a JSON
// TaskCreate or a multipart file upload, matching create_task's acceptance
// of both a JSON payload and a raw file upload.
func (h *Handler) CreateTask(c *gin.Context) {
	params, async, err := parseSubmitRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, params, async)
}

// FileParse is the compatibility surface for legacy clients that still
// POST multipart uploads to /file_parse instead of /api/tasks, grounded on
// spec.md's "forwards to submission with async form flag" requirement.
func (h *Handler) FileParse(c *gin.Context) {
	params, async, err := parseMultipartSubmitRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, params, async)
}

func (h *Handler) submit(c *gin.Context, params services.SubmitParams, async bool) {
	job, position, err := h.jobSrv.Submit(c.Request.Context(), params)
	if err != nil {
		writeError(c, "tasks_handler", err)
		return
	}

	if async {
		c.JSON(http.StatusOK, v1.NewTaskResponseFromModel(job, &position))
		return
	}
	c.JSON(http.StatusOK, v1.NewTaskResponseFromModel(job, nil))
}

// parseSubmitRequest binds either a JSON TaskCreate body or, when the
// request carries a multipart content type, an uploaded file plus form
// fields into a services.SubmitParams.
func parseSubmitRequest(c *gin.Context) (services.SubmitParams, bool, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return parseMultipartSubmitRequest(c)
	}

	var body v1.TaskCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		return services.SubmitParams{}, false, err
	}
	return services.SubmitParams{
		Payload:  models.Payload(body.Payload),
		Priority: body.Priority,
		Async:    body.AsyncMode,
	}, body.AsyncMode, nil
}

// parseMultipartSubmitRequest spools an uploaded file into the job payload
// as base64, the same encoding workerclient.Client later decodes before
// forwarding to a worker's /file_parse endpoint.
func parseMultipartSubmitRequest(c *gin.Context) (services.SubmitParams, bool, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return services.SubmitParams{}, false, err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return services.SubmitParams{}, false, err
	}

	payload := models.Payload{
		"file_base64": base64.StdEncoding.EncodeToString(raw),
		"file_name":   header.Filename,
	}
	if backend := c.Request.FormValue("backend"); backend != "" {
		payload["backend"] = backend
	}

	priority, _ := strconv.Atoi(c.Request.FormValue("priority"))
	async := c.Request.FormValue("async") == "" || c.Request.FormValue("async") == "true"

	return services.SubmitParams{Payload: payload, Priority: priority, Async: async}, async, nil
}

// GetTask returns a job's status and result (GET /api/tasks/{id}).
func (h *Handler) GetTask(c *gin.Context) {
	id := c.Param("id")

	job, position, err := h.jobSrv.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "tasks_handler", err)
		return
	}

	var pos *int
	if job.Status == models.JobPending {
		pos = &position
	}
	c.JSON(http.StatusOK, v1.NewTaskResponseFromModel(job, pos))
}

// ListTasks returns a paginated, optionally status-filtered job listing
// (GET /api/tasks), matching list_tasks's pending/running/database branches.
func (h *Handler) ListTasks(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	switch status {
	case string(models.JobPending):
		jobs := h.jobSrv.ListPending()
		c.JSON(http.StatusOK, paginateSummaries(jobs, page, pageSize, func(j *models.Job) *int {
			p := h.jobSrv.Position(j.ID)
			if p < 0 {
				return nil
			}
			return &p
		}))
		return
	case string(models.JobRunning):
		jobs := h.jobSrv.ListRunning()
		c.JSON(http.StatusOK, paginateSummaries(jobs, page, pageSize, func(j *models.Job) *int { return nil }))
		return
	default:
		jobs, total, err := h.jobSrv.ListHistory(c.Request.Context(), services.ListHistoryParams{
			Status: status, Page: page, PerPage: pageSize,
		})
		if err != nil {
			writeError(c, "tasks_handler", err)
			return
		}

		summaries := make([]v1.TaskSummary, 0, len(jobs))
		for _, j := range jobs {
			summaries = append(summaries, v1.NewTaskSummaryFromModel(j, nil))
		}
		c.JSON(http.StatusOK, v1.TaskListResponse{Tasks: summaries, Total: total, Page: page, PageSize: pageSize})
	}
}

func paginateSummaries(jobs []*models.Job, page, pageSize int, position func(*models.Job) *int) v1.TaskListResponse {
	total := len(jobs)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	summaries := make([]v1.TaskSummary, 0, end-start)
	for _, j := range jobs[start:end] {
		summaries = append(summaries, v1.NewTaskSummaryFromModel(j, position(j)))
	}
	return v1.TaskListResponse{Tasks: summaries, Total: total, Page: page, PageSize: pageSize}
}

// CancelTask cancels a pending or running job (DELETE /api/tasks/{id}).
func (h *Handler) CancelTask(c *gin.Context) {
	id := c.Param("id")
	if !h.jobSrv.Cancel(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found or already completed"})
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Task cancelled", TaskID: id})
}

// ListFailedTasks returns every job currently in the failed state
// (GET /api/tasks/failed/list).
func (h *Handler) ListFailedTasks(c *gin.Context) {
	jobs, err := h.jobSrv.ListFailed(c.Request.Context())
	if err != nil {
		writeError(c, "tasks_handler", err)
		return
	}

	out := make([]v1.FailedTaskResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, v1.NewFailedTaskResponseFromModel(j))
	}
	c.JSON(http.StatusOK, v1.FailedTaskListResponse{Tasks: out, Total: len(out)})
}

// RetryTask re-admits a single failed job (POST /api/tasks/{id}/retry).
func (h *Handler) RetryTask(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.jobSrv.Retry(c.Request.Context(), id)
	if err != nil {
		writeError(c, "tasks_handler", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "failed task not found"})
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Task requeued for retry", TaskID: id})
}

// RetryAllTasks re-admits every failed job (POST /api/tasks/retry-all).
func (h *Handler) RetryAllTasks(c *gin.Context) {
	count, err := h.jobSrv.RetryAll(c.Request.Context())
	if err != nil {
		writeError(c, "tasks_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Requeued tasks for retry", Count: count})
}

// writeError maps a typed dispatcherrors error to an HTTP status, matching
// the Python original's per-endpoint HTTPException status codes.
func writeError(c *gin.Context, logger string, err error) {
	switch {
	case dispatcherrors.IsQueueFullError(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case dispatcherrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case dispatcherrors.IsWorkerNotFoundError(err), pool.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case pool.IsBusy(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dispatcherrors.IsInvalidConfigError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dispatcherrors.IsExecutionTimeoutError(err), dispatcherrors.IsQueueTimeoutError(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case dispatcherrors.IsCancelledError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case dispatcherrors.IsRemoteError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		zap.S().Named(logger).Errorw("unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
