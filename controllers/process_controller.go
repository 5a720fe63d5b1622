package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
)

// ProcessController serves the /process routes
type ProcessController struct {
	process *services.ProcessService
	logger  logrus.FieldLogger
}

// NewProcessController creates a new ProcessController
func NewProcessController(process *services.ProcessService, logger logrus.FieldLogger) *ProcessController {
	return &ProcessController{process: process, logger: logger}
}

// LiveStatus handles GET /api/v1/process/live-status
func (ctl *ProcessController) LiveStatus(c *gin.Context) {
	statuses, err := ctl.process.LiveStatus(c.Request.Context(), services.LiveStatusFilter{
		Process: c.Query("process"),
		Search:  c.Query("search"),
		Limit:   queryInt(c, "limit", 0),
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, statuses)
}

// Statistics handles GET /api/v1/process/statistics
func (ctl *ProcessController) Statistics(c *gin.Context) {
	stats, err := ctl.process.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// SerialFlow handles GET /api/v1/process/serial/:serialNumber
func (ctl *ProcessController) SerialFlow(c *gin.Context) {
	flow, err := ctl.process.SerialFlow(c.Request.Context(), c.Param("serialNumber"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, flow)
}
