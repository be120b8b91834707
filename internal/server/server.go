package server

import (
	"context"
	"crypto/tls"
	"net/http"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/handlers"
	"github.com/tupyy/dispatch-agent/internal/server/middlewares"
)

// Server wraps an http.Server configured from Configuration.Server, matching
// the dev/prod dual-mode bootstrap documented in doc.go.
type Server struct {
	httpServer *http.Server
	cfg        config.Server
}

// New builds the Gin engine, registers every route against h, and applies
// the logging/recovery/auth middleware stack.
func New(cfg config.Server, auth config.Auth, h *handlers.Handler) *Server {
	if cfg.ServerMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	logger := zap.L().Named("http")
	router.Use(middlewares.Logger())
	router.Use(ginzap.RecoveryWithZap(logger, true))

	api := router.Group("/api")

	tasks := api.Group("/tasks")
	tasks.POST("", h.CreateTask)
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.DELETE("/:id", h.CancelTask)
	tasks.GET("/failed/list", h.ListFailedTasks)
	tasks.POST("/:id/retry", h.RetryTask)
	tasks.POST("/retry-all", h.RetryAllTasks)

	router.POST("/file_parse", h.FileParse)

	instances := api.Group("/instances")
	instances.GET("", h.ListInstances)
	stats := api.Group("/stats")
	stats.GET("", h.GetStats)
	stats.GET("/ws", h.StatsWebsocket)

	cfgRoutes := api.Group("/config")
	cfgRoutes.GET("", h.GetConfig)

	if auth.Enabled {
		secret := []byte(auth.JWTSecret)
		guard := middlewares.RequireAdmin(secret)

		instances.Use(guard)
		instances.POST("", h.AddInstance)
		instances.PATCH("/:id", h.UpdateInstance)
		instances.DELETE("/:id", h.RemoveInstance)
		instances.POST("/:id/enable", h.EnableInstance)
		instances.POST("/:id/disable", h.DisableInstance)

		cfgRoutes.Use(guard)
		cfgRoutes.PATCH("", h.UpdateConfig)
	} else {
		instances.POST("", h.AddInstance)
		instances.PATCH("/:id", h.UpdateInstance)
		instances.DELETE("/:id", h.RemoveInstance)
		instances.POST("/:id/enable", h.EnableInstance)
		instances.POST("/:id/disable", h.DisableInstance)
		cfgRoutes.PATCH("", h.UpdateConfig)
	}

	port := cfg.HTTPPort
	if port <= 0 {
		port = 8080
	}

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         ":" + strconv.Itoa(port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks serving traffic until Stop closes the listener. Production
// mode upgrades to TLS using the configured certificate.
func (s *Server) Start() error {
	if s.cfg.ServerMode == "prod" && s.cfg.TLSCertificate != "" {
		s.httpServer.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		return s.httpServer.ListenAndServeTLS(s.cfg.TLSCertificate, s.cfg.TLSCertificate)
	}
	return s.httpServer.ListenAndServe()
}

// Stop performs a graceful shutdown, waiting for in-flight requests to
// complete or ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
