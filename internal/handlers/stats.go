package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	v1 "github.com/tupyy/dispatch-agent/api/v1"
)

var statsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from the same origin as the API in every
	// deployment this agent targets; cross-origin polling isn't a use case.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const statsBroadcastInterval = 2 * time.Second

// GetStats returns a single aggregate snapshot (GET /api/stats).
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewStatsResponseFromModel(h.statsSrv.Snapshot()))
}

// StatsWebsocket upgrades to a websocket connection and pushes a stats
// snapshot on a fixed interval until the client disconnects
// (GET /api/stats/ws), matching the Python original's periodic broadcast
// of get_stats() to every connected dashboard client.
func (h *Handler) StatsWebsocket(c *gin.Context) {
	conn, err := statsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Named("stats_handler").Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(statsBroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(v1.NewStatsResponseFromModel(h.statsSrv.Snapshot())); err != nil {
				return
			}
		}
	}
}
