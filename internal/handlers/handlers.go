package handlers

import (
	"github.com/tupyy/dispatch-agent/internal/services"
)

// Handler holds every service the HTTP layer delegates to. A single
// Handler implements the route methods internal/server registers.
type Handler struct {
	jobSrv    *services.JobService
	workerSrv *services.WorkerService
	statsSrv  *services.StatsService
	configSrv *services.ConfigService
}

func New(jobSrv *services.JobService, workerSrv *services.WorkerService, statsSrv *services.StatsService, configSrv *services.ConfigService) *Handler {
	return &Handler{
		jobSrv:    jobSrv,
		workerSrv: workerSrv,
		statsSrv:  statsSrv,
		configSrv: configSrv,
	}
}
