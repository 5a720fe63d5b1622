package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/middleware"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
)

// CreateMovementRequest represents the request body for moving a sari
type CreateMovementRequest struct {
	SerialNumber   string  `json:"serialNumber" binding:"required,notblank"`
	FromProcess    string  `json:"fromProcess" binding:"required,notblank"`
	ToProcess      string  `json:"toProcess" binding:"required,notblank"`
	Location       string  `json:"location" binding:"required,notblank"`
	Notes          *string `json:"notes"`
	Operator       *string `json:"operator"`
	Quality        *string `json:"quality"`
	DocumentNumber *string `json:"documentNumber"`
}

// UpdateMovementRequest represents the request body for editing a movement
type UpdateMovementRequest struct {
	FromProcess    string  `json:"fromProcess" binding:"required,notblank"`
	ToProcess      string  `json:"toProcess" binding:"required,notblank"`
	Location       string  `json:"location" binding:"required,notblank"`
	Notes          *string `json:"notes"`
	Quality        *string `json:"quality"`
	DocumentNumber *string `json:"documentNumber"`
}

// MovementController serves the /movements routes
type MovementController struct {
	movements *services.MovementService
	logger    logrus.FieldLogger
}

// NewMovementController creates a new MovementController
func NewMovementController(movements *services.MovementService, logger logrus.FieldLogger) *MovementController {
	return &MovementController{movements: movements, logger: logger}
}

// List handles GET /api/v1/movements
func (ctl *MovementController) List(c *gin.Context) {
	filter := services.MovementListFilter{
		SerialNumber: c.Query("serialNumber"),
		Process:      c.Query("process"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 50),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_DATE", "date must be formatted as YYYY-MM-DD", nil)
			return
		}
		filter.Date = &date
	}

	movements, pagination, err := ctl.movements.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondList(c, movements, pagination)
}

// Get handles GET /api/v1/movements/:id
func (ctl *MovementController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	movement, err := ctl.movements.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, movement)
}

// History handles GET /api/v1/movements/sari/:serialNumber
func (ctl *MovementController) History(c *gin.Context) {
	movements, err := ctl.movements.History(c.Request.Context(), c.Param("serialNumber"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, movements)
}

// Create handles POST /api/v1/movements. The authenticated user is recorded as
// the operator unless the body names one.
func (ctl *MovementController) Create(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	operator := req.Operator
	if operator == nil || *operator == "" {
		operator = middleware.Operator(c)
	}

	accepted, err := ctl.movements.Accept(c.Request.Context(), services.AcceptMovementInput{
		SerialNumber:   req.SerialNumber,
		FromProcess:    req.FromProcess,
		ToProcess:      req.ToProcess,
		Location:       req.Location,
		Notes:          req.Notes,
		Operator:       operator,
		Quality:        req.Quality,
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, accepted)
}

// Update handles PUT /api/v1/movements/:id
func (ctl *MovementController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	movement, err := ctl.movements.Update(c.Request.Context(), id, services.UpdateMovementInput{
		FromProcess:    req.FromProcess,
		ToProcess:      req.ToProcess,
		Location:       req.Location,
		Notes:          req.Notes,
		Quality:        req.Quality,
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, movement)
}

// Delete handles DELETE /api/v1/movements/:id
func (ctl *MovementController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.movements.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondMessage(c, "Movement log deleted successfully", gin.H{"id": id})
}

// Summary handles GET /api/v1/movements/stats/summary
func (ctl *MovementController) Summary(c *gin.Context) {
	summary, err := ctl.movements.Summary(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}
