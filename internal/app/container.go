// Package app wires configuration, infrastructure and services together for
// the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/config"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/database"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/internal/infrastructure/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/storage"
	"github.com/sangkips/hisab-api/pkg/currency"
	"github.com/sangkips/hisab-api/pkg/document"
	"github.com/sangkips/hisab-api/pkg/oauth"
	"github.com/sangkips/hisab-api/pkg/phone"
	"github.com/sangkips/hisab-api/pkg/printer"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services holds every application service
type Services struct {
	Auth      *service.AuthService
	Customer  *service.CustomerService
	Product   *service.ProductService
	Ledger    *service.LedgerService
	Personal  *service.PersonalService
	Settings  *service.SettingsService
	Document  *service.DocumentService
	Printer   *service.PrinterService
	Transfer  *service.TransferService
	Report    *service.ReportService
	Dashboard *service.DashboardService
	Demo      *service.DemoService
	Events    *service.EventService
}

// Container owns the process-wide infrastructure
type Container struct {
	Cfg             *config.Config
	Log             *logrus.Logger
	DB              *gorm.DB
	JWTManager      *utils.JWTManager
	Google          *oauth.GoogleProvider
	IdempotencyRepo domainRepo.IdempotencyRepository
	Locker          lock.Locker
	Services        *Services
	// LocalStore is set when blobs are kept on disk.
	LocalStore *storage.LocalStore

	closers []func() error
}

// New connects to the database and optional Redis, then builds every service
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.SeedDefaultData(db, log); err != nil {
		config.LogError(log, "container.go", "New", "SeedDefaultData", nil, err)
	}

	c := &Container{
		Cfg: cfg,
		Log: log,
		DB:  db,
		JWTManager: utils.NewJWTManager(
			cfg.JWT.Secret,
			cfg.JWT.ExpiryHours,
			cfg.JWT.RefreshExpiryHours,
		),
	}
	if sqlDB, err := db.DB(); err == nil {
		c.closers = append(c.closers, sqlDB.Close)
	}

	rdb, err := database.NewRedisClient(ctx, &cfg.Redis, log)
	if err != nil {
		c.Close()
		return nil, err
	}
	var (
		broker realtime.Broker
		locker lock.Locker
	)
	if rdb != nil {
		broker = realtime.NewRedisBroker(rdb, "hisab", log)
		locker = lock.NewRedisLocker(rdb)
		c.closers = append(c.closers, rdb.Close)
	} else {
		broker = realtime.NewMemoryBroker()
		locker = lock.NewLocalLocker()
	}
	c.closers = append(c.closers, broker.Close)

	store, err := c.newStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	thermal, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
		Width:   cfg.Printer.Width,
	})
	if err != nil {
		log.WithError(err).Warn("failed to initialize printer, receipts will not be printed")
		thermal = printer.NewMemoryPrinter()
	}
	c.closers = append(c.closers, thermal.Close)

	if cfg.OAuth.GoogleEnabled() {
		c.Google = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.GoogleRedirectURL,
			FrontendURL:  cfg.OAuth.FrontendURL,
			StateSecret:  cfg.JWT.Secret,
		})
	}

	c.IdempotencyRepo = repository.NewIdempotencyRepository(db)
	c.Locker = locker
	c.Services = c.newServices(broker, locker, store, thermal)
	return c, nil
}

func (c *Container) newStore(ctx context.Context) (storage.Store, error) {
	cfg := c.Cfg.Storage
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, gcs.Close)
		c.Log.WithField("bucket", cfg.GCSBucket).Info("storing uploads in GCS")
		return gcs, nil
	}

	local, err := storage.NewLocalStore(filepath.Join(cfg.Path, "uploads"), cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	c.LocalStore = local
	return local, nil
}

func (c *Container) newServices(broker realtime.Broker, locker lock.Locker, store storage.Store, thermal printer.Printer) *Services {
	cfg, log := c.Cfg, c.Log
	loc := cfg.App.Location()
	money := currency.NewFormatter(cfg.App.Currency)

	userRepo := repository.NewUserRepository(c.DB)
	customerRepo := repository.NewCustomerRepository(c.DB)
	productRepo := repository.NewProductRepository(c.DB)
	ledgerRepo := repository.NewLedgerRepository(c.DB)
	personalRepo := repository.NewPersonalRepository(c.DB)
	settingsRepo := repository.NewSettingsRepository(c.DB)
	analyticsRepo := repository.NewAnalyticsRepository(c.DB)
	demoRepo := repository.NewDemoRepository(c.DB)

	var google service.GoogleIdentity
	if c.Google != nil {
		google = c.Google
	}

	s := &Services{}
	s.Auth = service.NewAuthService(userRepo, settingsRepo, c.JWTManager, google, log.WithField("service", "auth"))
	s.Customer = service.NewCustomerService(customerRepo, phone.NewValidator(cfg.Phone.Region), broker, log.WithField("service", "customer"))
	s.Product = service.NewProductService(productRepo, broker, log.WithField("service", "product"))
	s.Ledger = service.NewLedgerService(ledgerRepo, customerRepo, productRepo, enum.ParseStockPolicy(cfg.Ledger.StockPolicy), broker, log.WithField("service", "ledger"))
	s.Personal = service.NewPersonalService(personalRepo, broker, log.WithField("service", "personal"))
	s.Settings = service.NewSettingsService(settingsRepo, store, cfg.Storage.UploadMaxSize, broker, log.WithField("service", "settings"))
	s.Document = service.NewDocumentService(
		s.Ledger,
		s.Settings,
		document.NewRenderer(cfg.Document.FontPath, money),
		storage.NewLoader(c.LocalStore, cfg.Storage.UploadMaxSize),
		loc,
		log.WithField("service", "document"),
	)
	s.Printer = service.NewPrinterService(thermal, s.Document, cfg.Printer.Type, cfg.Printer.Width, money, log.WithField("service", "printer"))
	s.Transfer = service.NewTransferService(customerRepo, productRepo, ledgerRepo, s.Ledger, locker, cfg.Ledger.ImportLockTTL, loc, broker, log.WithField("service", "transfer"))
	s.Report = service.NewReportService(ledgerRepo, loc, log.WithField("service", "report"))
	s.Dashboard = service.NewDashboardService(analyticsRepo, productRepo, cfg.App.LowStockThreshold, loc)
	s.Demo = service.NewDemoService(demoRepo, broker, log.WithField("service", "demo"))
	s.Events = service.NewEventService(broker)
	return s
}

// Close releases infrastructure in reverse order of acquisition
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			config.LogError(c.Log, "container.go", "Close", "release resource", i, err)
		}
	}
	c.closers = nil
}

// SessionFor resolves the account registered under email
func (c *Container) SessionFor(ctx context.Context, email string) (*account.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := repository.NewUserRepository(c.DB).GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("no account registered for %q", email)
	}
	return account.NewSession(user.ID, user.Email), nil
}
