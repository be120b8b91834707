package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

// GetConfig returns the live dispatch configuration (GET /api/config).
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewConfigResponseFromModel(h.configSrv.Get()))
}

// UpdateConfig merges a partial update onto the live configuration and
// hot-applies it (PATCH /api/config).
func (h *Handler) UpdateConfig(c *gin.Context) {
	var body v1.ConfigUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next := v1.ApplyConfigUpdate(h.configSrv.Get(), body)
	if err := h.configSrv.Update(c.Request.Context(), next); err != nil {
		writeError(c, "config_handler", err)
		return
	}
	c.JSON(http.StatusOK, v1.NewConfigResponseFromModel(h.configSrv.Get()))
}
