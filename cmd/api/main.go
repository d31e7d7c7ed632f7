package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/mobilia/erp-api/internal/config"
	"github.com/mobilia/erp-api/internal/database"
	"github.com/mobilia/erp-api/internal/handlers"
	"github.com/mobilia/erp-api/internal/jobs"
	"github.com/mobilia/erp-api/internal/middleware"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/services"
	"github.com/mobilia/erp-api/internal/storage"
	"github.com/mobilia/erp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(db, repos, worker, store)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Parties
			protected.GET("/parties", h.Party.Index)
			protected.POST("/parties", h.Party.Create)
			protected.GET("/parties/:id", h.Party.Show)
			protected.POST("/parties/:id/recalculate_balance", h.Party.RecalculateBalance)

			// Invoices and bills
			protected.GET("/invoices", h.Invoice.Index)
			protected.GET("/invoices/open", h.Invoice.Open)
			protected.POST("/invoices", h.Invoice.Create)
			protected.GET("/invoices/:id", h.Invoice.Show)
			protected.PATCH("/invoices/:id", h.Invoice.Update)
			protected.POST("/invoices/:id/issue", h.Invoice.Issue)
			protected.POST("/invoices/:id/cancel", h.Invoice.Cancel)

			// Vouchers and allocations
			protected.GET("/vouchers", h.Voucher.Index)
			protected.POST("/vouchers", h.Voucher.Create)
			protected.GET("/vouchers/:id", h.Voucher.Show)
			protected.POST("/vouchers/:id/post", h.Voucher.Post)
			protected.POST("/vouchers/:id/cancel", h.Voucher.Cancel)
			protected.POST("/vouchers/:id/allocations", h.Voucher.Allocate)
			protected.POST("/vouchers/:id/auto_allocate", h.Voucher.AutoAllocate)
			protected.DELETE("/vouchers/:id/allocations/:allocation_id", h.Voucher.RemoveAllocation)
			protected.GET("/vouchers/:id/pdf", h.Voucher.DownloadPDF)

			// Returns
			protected.GET("/returns", h.Return.Index)
			protected.POST("/returns", h.Return.Create)
			protected.GET("/returns/:id", h.Return.Show)
			protected.POST("/returns/:id/approve", h.Return.Approve)
			protected.POST("/returns/:id/reject", h.Return.Reject)

			// Installations
			protected.GET("/installations", h.Installation.Index)
			protected.POST("/installations", h.Installation.Create)
			protected.GET("/installations/:id", h.Installation.Show)
			protected.POST("/installations/:id/schedule", h.Installation.Schedule)
			protected.POST("/installations/:id/start", h.Installation.Start)
			protected.POST("/installations/:id/no_show", h.Installation.MarkNoShow)
			protected.POST("/installations/:id/hold_parts", h.Installation.HoldForParts)
			protected.POST("/installations/:id/complete", h.Installation.Complete)
			protected.POST("/installations/:id/photos", h.Installation.UploadPhoto)

			// Reports
			protected.GET("/reports/aging", h.Report.Aging)
			protected.GET("/reports/aging_xlsx", h.Report.AgingXLSX)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/audits/:subject_kind/:subject_id", h.Audit.Trail)
				admin.GET("/jobs/status", h.Job.Status)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Periodic consistency sweep over party balances
	if cfg.BalanceSweepMinutes > 0 {
		interval := time.Duration(cfg.BalanceSweepMinutes) * time.Minute
		worker.ScheduleEvery(interval, func(ctx context.Context) error {
			logger.Info("[Job] Recalculating party balances...")
			return svcs.Party.RecalculateAllBalances(ctx)
		})
	}

	logger.Info("Scheduled recurring jobs")
}
