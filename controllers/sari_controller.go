package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/sirupsen/logrus"
)

// CreateSariRequest represents the request body for registering a sari
type CreateSariRequest struct {
	SerialNumber    string `json:"serialNumber" binding:"required,notblank"`
	DesignCode      string `json:"designCode" binding:"required,notblank"`
	CurrentProcess  string `json:"currentProcess"`
	CurrentLocation string `json:"currentLocation"`
	EntryDate       string `json:"entryDate" binding:"required"`
}

// UpdateSariRequest represents the request body for editing a sari
type UpdateSariRequest struct {
	DesignCode      string `json:"designCode" binding:"required,notblank"`
	CurrentProcess  string `json:"currentProcess"`
	CurrentLocation string `json:"currentLocation"`
	EntryDate       string `json:"entryDate" binding:"required"`
}

// SariController serves the /saris routes
type SariController struct {
	saris  *services.SariService
	logger logrus.FieldLogger
}

// NewSariController creates a new SariController
func NewSariController(saris *services.SariService, logger logrus.FieldLogger) *SariController {
	return &SariController{saris: saris, logger: logger}
}

func parseEntryDate(c *gin.Context, value string) (time.Time, bool) {
	date, ok := utils.ParseDate(value)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{"entryDate": "date"})
		return time.Time{}, false
	}
	return date, true
}

// List handles GET /api/v1/saris
func (ctl *SariController) List(c *gin.Context) {
	saris, pagination, err := ctl.saris.List(c.Request.Context(), services.SariListFilter{
		Search:  c.Query("search"),
		Process: c.Query("process"),
		Status:  c.Query("status"),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 20),
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondList(c, saris, pagination)
}

// Get handles GET /api/v1/saris/:serialNumber
func (ctl *SariController) Get(c *gin.Context) {
	sari, err := ctl.saris.Get(c.Request.Context(), c.Param("serialNumber"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, sari)
}

// Create handles POST /api/v1/saris
func (ctl *SariController) Create(c *gin.Context) {
	var req CreateSariRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	entryDate, ok := parseEntryDate(c, req.EntryDate)
	if !ok {
		return
	}

	sari, err := ctl.saris.Create(c.Request.Context(), services.CreateSariInput{
		SerialNumber:    req.SerialNumber,
		ItemCode:        req.DesignCode,
		EntryDate:       entryDate,
		CurrentProcess:  req.CurrentProcess,
		CurrentLocation: req.CurrentLocation,
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, sari)
}

// Update handles PUT /api/v1/saris/:serialNumber
func (ctl *SariController) Update(c *gin.Context) {
	var req UpdateSariRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	entryDate, ok := parseEntryDate(c, req.EntryDate)
	if !ok {
		return
	}

	sari, err := ctl.saris.Update(c.Request.Context(), c.Param("serialNumber"), services.UpdateSariInput{
		ItemCode:        req.DesignCode,
		EntryDate:       entryDate,
		CurrentProcess:  req.CurrentProcess,
		CurrentLocation: req.CurrentLocation,
	})
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, sari)
}

// Delete handles DELETE /api/v1/saris/:serialNumber. The sari is marked
// rejected and keeps its movement history.
func (ctl *SariController) Delete(c *gin.Context) {
	sari, err := ctl.saris.Delete(c.Request.Context(), c.Param("serialNumber"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondMessage(c, "Sari marked as rejected", sari)
}

// Restore handles POST /api/v1/saris/:serialNumber/restore
func (ctl *SariController) Restore(c *gin.Context) {
	sari, err := ctl.saris.Restore(c.Request.Context(), c.Param("serialNumber"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondMessage(c, "Sari restored", sari)
}
