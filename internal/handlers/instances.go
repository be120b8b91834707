package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
	"github.com/tupyy/dispatch-agent/internal/services"
)

// ListInstances returns every registered worker (GET /api/instances).
func (h *Handler) ListInstances(c *gin.Context) {
	workers := h.workerSrv.List()
	out := make([]v1.InstanceResponse, 0, len(workers))
	for _, w := range workers {
		out = append(out, v1.NewInstanceResponseFromModel(w))
	}
	c.JSON(http.StatusOK, out)
}

// AddInstance registers a new worker endpoint (POST /api/instances).
func (h *Handler) AddInstance(c *gin.Context) {
	var body v1.InstanceCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.workerSrv.Add(c.Request.Context(), body.URL, body.Name, body.Backend)
	if err != nil {
		writeError(c, "instances_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.NewInstanceResponseFromModel(w))
}

// UpdateInstance patches a worker's mutable fields (PATCH /api/instances/{id}).
func (h *Handler) UpdateInstance(c *gin.Context) {
	id := c.Param("id")
	var body v1.InstanceUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.workerSrv.Update(c.Request.Context(), id, services.UpdateParams{
		Name: body.Name, URL: body.URL, Backend: body.Backend,
	})
	if err != nil {
		writeError(c, "instances_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.NewInstanceResponseFromModel(w))
}

// RemoveInstance deregisters a worker (DELETE /api/instances/{id}).
func (h *Handler) RemoveInstance(c *gin.Context) {
	id := c.Param("id")
	if err := h.workerSrv.Remove(c.Request.Context(), id); err != nil {
		writeError(c, "instances_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Instance removed"})
}

// EnableInstance marks a worker eligible to receive jobs again
// (POST /api/instances/{id}/enable).
func (h *Handler) EnableInstance(c *gin.Context) {
	id := c.Param("id")
	if err := h.workerSrv.Enable(c.Request.Context(), id); err != nil {
		writeError(c, "instances_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Instance enabled"})
}

// DisableInstance marks a worker ineligible for new jobs
// (POST /api/instances/{id}/disable).
func (h *Handler) DisableInstance(c *gin.Context) {
	id := c.Param("id")
	if err := h.workerSrv.Disable(c.Request.Context(), id); err != nil {
		writeError(c, "instances_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.MessageResponse{Message: "Instance disabled"})
}
