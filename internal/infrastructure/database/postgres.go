package database

import (
	"fmt"
	"strings"

	"github.com/sangkips/hisab-api/internal/config"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.WithFields(logrus.Fields{"host": cfg.Host, "database": cfg.Name}).Info("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.StoreSettings{},

		&entity.Customer{},
		&entity.Product{},

		// Ledger
		&entity.Transaction{},
		&entity.TransactionItem{},
		&entity.PersonalTransaction{},

		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the operator account named by ADMIN_EMAIL and
// ADMIN_PASSWORD when both are set and the account does not exist yet.
func SeedDefaultData(db *gorm.DB, log *logrus.Logger) error {
	adminEmail := strings.ToLower(strings.TrimSpace(viper.GetString("ADMIN_EMAIL")))
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.WithField("email", adminEmail).Info("admin account already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if adminName == "" {
		adminName = "Admin"
	}

	admin := entity.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: string(hashedPassword),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	if err := db.Create(entity.DefaultStoreSettings(admin.ID)).Error; err != nil {
		log.WithError(err).Warn("failed to create admin store settings")
	}

	log.WithField("email", adminEmail).Info("admin account created")
	return nil
}
