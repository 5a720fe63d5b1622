package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthController serves the liveness and database status routes
type HealthController struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewHealthController creates a new HealthController
func NewHealthController(db *gorm.DB, logger logrus.FieldLogger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// Health handles GET /api/v1/health
func (ctl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sari Inventory API is running",
	})
}

// DatabaseStatus handles GET /api/v1/database/status - pings the database and lists its tables
func (ctl *HealthController) DatabaseStatus(c *gin.Context) {
	sqlDB, err := ctl.db.DB()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance", nil)
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		ctl.logger.WithError(err).Error("database ping failed")
		abortWithError(c, http.StatusServiceUnavailable, "DATABASE_CONNECTION_ERROR", "Database connection failed", nil)
		return
	}

	tables, err := ctl.db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables", nil)
		return
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
		"pool": gin.H{
			"open":  stats.OpenConnections,
			"inUse": stats.InUse,
			"idle":  stats.Idle,
		},
	})
}
