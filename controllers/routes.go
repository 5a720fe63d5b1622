package controllers

import (
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/middleware"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// Dependencies are the shared resources the HTTP layer is built from. Cache,
// Metrics, Locker and ReportStore may be nil.
type Dependencies struct {
	DB          *gorm.DB
	Cache       *services.Cache
	Metrics     *services.Metrics
	Locker      *redislock.Client
	ReportStore services.ReportStore
	PhoneRegion string
	Logger      logrus.FieldLogger

	// WriteGuards run before every handler that changes data
	WriteGuards []gin.HandlerFunc

	CORSOrigins  []string
	AllowAllCORS bool
	ServiceName  string
}

// NewRouter builds the gin engine with every /api/v1 route registered
func NewRouter(deps Dependencies) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(deps.Logger))

	corsConfig := cors.DefaultConfig()
	if deps.AllowAllCORS {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.CORSOrigins
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middleware.RequestIDHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middleware.RequestIDHeader)
	corsConfig.MaxAge = 12 * time.Hour
	if deps.AllowAllCORS || len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	if deps.ServiceName != "" {
		r.Use(otelgin.Middleware(deps.ServiceName))
	}

	RegisterRoutes(r.Group("/api/v1"), deps)
	return r
}

// RegisterRoutes wires the controllers onto rg
func RegisterRoutes(rg *gin.RouterGroup, deps Dependencies) {
	logger := deps.Logger

	health := NewHealthController(deps.DB, logger)
	saris := NewSariController(services.NewSariService(deps.DB, deps.Cache, logger), logger)
	movements := NewMovementController(services.NewMovementService(deps.DB, deps.Cache, deps.Metrics, logger), logger)
	process := NewProcessController(services.NewProcessService(deps.DB), logger)
	dashboard := NewDashboardController(services.NewDashboardService(deps.DB, deps.Cache), services.NewItemService(deps.DB), logger)
	contacts := NewContactController(services.NewContactService(deps.DB, deps.PhoneRegion, logger), logger)
	reports := NewReportController(
		services.NewReportService(deps.DB, deps.ReportStore, logger),
		services.NewImportService(deps.DB, deps.Locker, deps.Cache, deps.Metrics, logger),
		logger,
	)

	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(deps.WriteGuards)+1)
		chain = append(chain, deps.WriteGuards...)
		return append(chain, h)
	}

	rg.GET("/health", health.Health)
	rg.GET("/database/status", health.DatabaseStatus)

	sariRoutes := rg.Group("/saris")
	{
		sariRoutes.GET("", saris.List)
		sariRoutes.POST("", write(saris.Create)...)
		sariRoutes.GET("/:serialNumber", saris.Get)
		sariRoutes.PUT("/:serialNumber", write(saris.Update)...)
		sariRoutes.DELETE("/:serialNumber", write(saris.Delete)...)
		sariRoutes.POST("/:serialNumber/restore", write(saris.Restore)...)
	}

	movementRoutes := rg.Group("/movements")
	{
		movementRoutes.GET("", movements.List)
		movementRoutes.POST("", write(movements.Create)...)
		movementRoutes.GET("/stats/summary", movements.Summary)
		movementRoutes.GET("/sari/:serialNumber", movements.History)
		movementRoutes.GET("/:id", movements.Get)
		movementRoutes.PUT("/:id", write(movements.Update)...)
		movementRoutes.DELETE("/:id", write(movements.Delete)...)
	}

	processRoutes := rg.Group("/process")
	{
		processRoutes.GET("/live-status", process.LiveStatus)
		processRoutes.GET("/statistics", process.Statistics)
		processRoutes.GET("/serial/:serialNumber", process.SerialFlow)
	}

	dashboardRoutes := rg.Group("/dashboard")
	{
		dashboardRoutes.GET("/overview", dashboard.Overview)
		dashboardRoutes.GET("/production-flow", dashboard.ProductionFlow)
		dashboardRoutes.GET("/inventory-analytics", dashboard.InventoryAnalytics)
		dashboardRoutes.GET("/recent-activities", dashboard.RecentActivities)
		dashboardRoutes.GET("/performance-metrics", dashboard.PerformanceMetrics)
		dashboardRoutes.GET("/search-suggestions", dashboard.SearchSuggestions)
	}
	rg.GET("/design-codes", dashboard.DesignCodes)

	customerRoutes := rg.Group("/customers")
	{
		customerRoutes.GET("", contacts.ListCustomers)
		customerRoutes.POST("", write(contacts.CreateCustomer)...)
		customerRoutes.GET("/stats/summary", contacts.CustomerStats)
		customerRoutes.GET("/:id", contacts.GetCustomer)
		customerRoutes.PUT("/:id", write(contacts.UpdateCustomer)...)
		customerRoutes.DELETE("/:id", write(contacts.DeleteCustomer)...)
	}

	supplierRoutes := rg.Group("/suppliers")
	{
		supplierRoutes.GET("", contacts.ListSuppliers)
		supplierRoutes.POST("", write(contacts.CreateSupplier)...)
		supplierRoutes.GET("/categories/list", contacts.SupplierCategories)
		supplierRoutes.GET("/stats/summary", contacts.SupplierStats)
		supplierRoutes.GET("/:id", contacts.GetSupplier)
		supplierRoutes.PUT("/:id", write(contacts.UpdateSupplier)...)
		supplierRoutes.DELETE("/:id", write(contacts.DeleteSupplier)...)
	}

	rg.GET("/reports/inventory", reports.InventoryReport)
	rg.POST("/reports/inventory/archive", write(reports.ArchiveInventoryReport)...)
	rg.POST("/imports/items", write(reports.ImportItems)...)
	rg.POST("/imports/saris", write(reports.ImportSaris)...)
}
