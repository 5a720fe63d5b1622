package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/sirupsen/logrus"
)

// ReportController serves the /reports and /imports routes
type ReportController struct {
	reports *services.ReportService
	imports *services.ImportService
	logger  logrus.FieldLogger
}

// NewReportController creates a new ReportController
func NewReportController(reports *services.ReportService, imports *services.ImportService, logger logrus.FieldLogger) *ReportController {
	return &ReportController{reports: reports, imports: imports, logger: logger}
}

// InventoryReport handles GET /api/v1/reports/inventory - streams the Excel workbook
func (ctl *ReportController) InventoryReport(c *gin.Context) {
	body, filename, err := ctl.reports.InventoryReport(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, services.XLSXContentType, body)
}

// ArchiveInventoryReport handles POST /api/v1/reports/inventory/archive
func (ctl *ReportController) ArchiveInventoryReport(c *gin.Context) {
	archived, err := ctl.reports.ArchiveInventoryReport(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, archived)
}

// ImportItems handles POST /api/v1/imports/items (multipart field "file")
func (ctl *ReportController) ImportItems(c *gin.Context) {
	ctl.runImport(c, ctl.imports.ImportItems)
}

// ImportSaris handles POST /api/v1/imports/saris (multipart field "file")
func (ctl *ReportController) ImportSaris(c *gin.Context) {
	ctl.runImport(c, ctl.imports.ImportSaris)
}

type importFunc func(ctx context.Context, r io.Reader) (*services.ImportResult, error)

// runImport validates the uploaded CSV and feeds it to run
func (ctl *ReportController) runImport(c *gin.Context, run importFunc) {
	fileHeader, _ := c.FormFile("file")
	if err := utils.ValidateImportFile(fileHeader); err != nil {
		code := "INVALID_FILE"
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			code = uploadErr.Code
		}
		abortWithError(c, http.StatusBadRequest, code, err.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_FILE", "Failed to read uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := run(c.Request.Context(), file)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
