package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
)

// DashboardController serves the /dashboard and /design-codes routes
type DashboardController struct {
	dashboard *services.DashboardService
	items     *services.ItemService
	logger    logrus.FieldLogger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboard *services.DashboardService, items *services.ItemService, logger logrus.FieldLogger) *DashboardController {
	return &DashboardController{dashboard: dashboard, items: items, logger: logger}
}

// Overview handles GET /api/v1/dashboard/overview
func (ctl *DashboardController) Overview(c *gin.Context) {
	overview, err := ctl.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, overview)
}

// ProductionFlow handles GET /api/v1/dashboard/production-flow
func (ctl *DashboardController) ProductionFlow(c *gin.Context) {
	flow, err := ctl.dashboard.ProductionFlow(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, flow)
}

// InventoryAnalytics handles GET /api/v1/dashboard/inventory-analytics
func (ctl *DashboardController) InventoryAnalytics(c *gin.Context) {
	analytics, err := ctl.dashboard.InventoryAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, analytics)
}

// RecentActivities handles GET /api/v1/dashboard/recent-activities
func (ctl *DashboardController) RecentActivities(c *gin.Context) {
	activities, err := ctl.dashboard.RecentActivities(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, activities)
}

// PerformanceMetrics handles GET /api/v1/dashboard/performance-metrics?period=<days>
func (ctl *DashboardController) PerformanceMetrics(c *gin.Context) {
	metrics, err := ctl.dashboard.PerformanceMetrics(c.Request.Context(), queryInt(c, "period", 7))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, metrics)
}

// SearchSuggestions handles GET /api/v1/dashboard/search-suggestions?query=
func (ctl *DashboardController) SearchSuggestions(c *gin.Context) {
	suggestions, err := ctl.dashboard.SearchSuggestions(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, suggestions)
}

// DesignCodes handles GET /api/v1/design-codes
func (ctl *DashboardController) DesignCodes(c *gin.Context) {
	items, err := ctl.items.List(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}
