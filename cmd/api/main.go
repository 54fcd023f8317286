package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/app"
	"github.com/sangkips/hisab-api/internal/config"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/handler"
	"github.com/sangkips/hisab-api/internal/presentation/http/routes"
	"github.com/sirupsen/logrus"
)

// idempotencyPurgeInterval is how often expired idempotency keys are removed
const idempotencyPurgeInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.NewLogger(&cfg.Log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := request.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}
	defer container.Close()

	svc := container.Services
	var redirects handler.GoogleRedirects
	if container.Google != nil {
		redirects = container.Google
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(svc.Auth, redirects),
		Customer:    handler.NewCustomerHandler(svc.Customer, svc.Ledger, svc.Document, svc.Transfer),
		Product:     handler.NewProductHandler(svc.Product, svc.Transfer),
		Transaction: handler.NewTransactionHandler(svc.Ledger, svc.Document, svc.Printer, svc.Transfer, cfg.App.Location()),
		Personal:    handler.NewPersonalHandler(svc.Personal),
		Report:      handler.NewReportHandler(svc.Report),
		Dashboard:   handler.NewDashboardHandler(svc.Dashboard, svc.Demo),
		Settings:    handler.NewSettingsHandler(svc.Settings),
		Event:       handler.NewEventHandler(svc.Events),
		Printer:     handler.NewPrinterHandler(svc.Printer),
	}

	deps := &routes.Deps{
		JWTManager:      container.JWTManager,
		Cfg:             cfg,
		IdempotencyRepo: container.IdempotencyRepo,
		Locker:          container.Locker,
		Log:             log,
	}
	if container.LocalStore != nil {
		deps.UploadsDir = container.LocalStore.Root()
	}

	// Setup routes
	router, stopRouter := routes.Setup(handlers, deps)
	defer stopRouter()

	go purgeIdempotencyKeys(ctx, container)

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port": port,
			"env":  cfg.App.Env,
		}).Infof("starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}

func purgeIdempotencyKeys(ctx context.Context, c *app.Container) {
	ticker := time.NewTicker(idempotencyPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := c.IdempotencyRepo.DeleteExpired(ctx, now)
			if err != nil {
				config.LogError(c.Log, "main.go", "purgeIdempotencyKeys", "DeleteExpired", now, err)
				continue
			}
			if n > 0 {
				c.Log.WithField("deleted", n).Info("purged expired idempotency keys")
			}
		}
	}
}
