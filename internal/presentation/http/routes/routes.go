package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/config"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sangkips/hisab-api/internal/presentation/http/handler"
	"github.com/sangkips/hisab-api/internal/presentation/http/middleware"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Customer    *handler.CustomerHandler
	Product     *handler.ProductHandler
	Transaction *handler.TransactionHandler
	Personal    *handler.PersonalHandler
	Report      *handler.ReportHandler
	Dashboard   *handler.DashboardHandler
	Settings    *handler.SettingsHandler
	Event       *handler.EventHandler
	Printer     *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Locker          lock.Locker
	Log             *logrus.Logger
	// UploadsDir is served under /uploads when logos are stored locally.
	UploadsDir string
}

// Setup creates the Gin router and registers all routes. The returned stop
// function ends background work owned by the router.
func Setup(h *Handlers, deps *Deps) (*gin.Engine, func()) {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	if deps.UploadsDir != "" {
		router.Static("/uploads", deps.UploadsDir)
	}

	rateLimiter := middleware.NewAccountRateLimiter(rateLimiterConfig(&deps.Cfg.RateLimit))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// The change stream authenticates from the query string as well
		v1.GET("/events", middleware.StreamAuthMiddleware(deps.JWTManager), h.Event.Stream)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router, rateLimiter.Stop
}

func rateLimiterConfig(cfg *config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleLogin)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.Me)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Settings
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", h.Settings.UpdateSettings)
	protected.POST("/settings/logo", h.Settings.UploadLogo)

	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)
	protected.POST("/demo", h.Dashboard.LoadDemo)

	registerCustomerRoutes(protected, h)
	registerProductRoutes(protected, h)
	registerTransactionRoutes(protected, h, deps)
	registerPersonalRoutes(protected, h)
	registerReportRoutes(protected, h)

	// Printer
	protected.GET("/printer/status", h.Printer.GetStatus)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/export.csv", h.Customer.Export)
		customers.POST("/import", h.Customer.Import)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/transactions", h.Customer.History)
		customers.POST("/:id/payments", h.Customer.Payment)
		customers.GET("/:id/statement.pdf", h.Customer.StatementPDF)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/export.csv", h.Product.Export)
		products.POST("/import", h.Product.Import)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:     deps.IdempotencyRepo,
		Locker:   deps.Locker,
		Log:      deps.Log,
		Required: true,
	})

	transactions := protected.Group("/transactions")
	{
		transactions.GET("", h.Transaction.List)
		transactions.POST("", idempotent, h.Transaction.Record)
		transactions.GET("/export.csv", h.Transaction.Export)
		transactions.POST("/import", h.Transaction.Import)
		transactions.GET("/:id", h.Transaction.Get)
		transactions.GET("/:id/receipt", h.Transaction.Receipt)
		transactions.GET("/:id/invoice.pdf", h.Transaction.InvoicePDF)
		transactions.POST("/:id/print", h.Transaction.Print)
	}

	protected.GET("/ledger/reconcile", h.Transaction.Reconcile)
}

func registerPersonalRoutes(protected *gin.RouterGroup, h *Handlers) {
	personal := protected.Group("/personal")
	{
		personal.GET("", h.Personal.List)
		personal.POST("", h.Personal.Create)
		personal.GET("/summary", h.Personal.Summary)
		personal.DELETE("/:id", h.Personal.Delete)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	{
		reports.GET("/monthly", h.Report.Monthly)
		reports.GET("/monthly.xlsx", h.Report.MonthlyXLSX)
		reports.GET("/summary", h.Report.Summary)
	}
}
