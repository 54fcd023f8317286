package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Ledger    LedgerConfig
	Printer   PrinterConfig
	OAuth     OAuthConfig
	Document  DocumentConfig
	Phone     PhoneConfig
	Log       LogConfig
}

type AppConfig struct {
	Name              string
	Env               string
	Port              string
	Debug             bool
	Timezone          string
	Currency          string
	LowStockThreshold int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	LogSQL   bool
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type StorageConfig struct {
	Path           string
	UploadMaxSize  int64
	GCSBucket      string
	GCSCredentials string
	PublicBaseURL  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LedgerConfig struct {
	StockPolicy   string
	ImportLockTTL time.Duration
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string
}

type DocumentConfig struct {
	FontPath string
}

type PhoneConfig struct {
	Region string
}

type LogConfig struct {
	Level string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "hisab-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Asia/Dhaka")
	viper.SetDefault("APP_CURRENCY", "BDT")
	viper.SetDefault("LOW_STOCK_THRESHOLD", 5)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "hisab")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Dhaka")
	viper.SetDefault("DB_LOG_SQL", false)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("UPLOAD_MAX_SIZE", 2097152)
	viper.SetDefault("GCS_BUCKET", "")
	viper.SetDefault("GCS_CREDENTIALS_JSON", "")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("REDIS_ADDRESS", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LEDGER_STOCK_POLICY", "clamp")
	viper.SetDefault("IMPORT_LOCK_TTL_SECONDS", 120)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("DOCUMENT_FONT_PATH", "")
	viper.SetDefault("PHONE_REGION", "BD")
	viper.SetDefault("LOG_LEVEL", "info")

	return &Config{
		App: AppConfig{
			Name:              viper.GetString("APP_NAME"),
			Env:               viper.GetString("APP_ENV"),
			Port:              viper.GetString("APP_PORT"),
			Debug:             viper.GetBool("APP_DEBUG"),
			Timezone:          viper.GetString("APP_TIMEZONE"),
			Currency:          strings.ToUpper(viper.GetString("APP_CURRENCY")),
			LowStockThreshold: viper.GetInt("LOW_STOCK_THRESHOLD"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			LogSQL:   viper.GetBool("DB_LOG_SQL"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Path:           viper.GetString("STORAGE_PATH"),
			UploadMaxSize:  viper.GetInt64("UPLOAD_MAX_SIZE"),
			GCSBucket:      viper.GetString("GCS_BUCKET"),
			GCSCredentials: viper.GetString("GCS_CREDENTIALS_JSON"),
			PublicBaseURL:  strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("REDIS_ADDRESS"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Ledger: LedgerConfig{
			StockPolicy:   viper.GetString("LEDGER_STOCK_POLICY"),
			ImportLockTTL: time.Duration(viper.GetInt("IMPORT_LOCK_TTL_SECONDS")) * time.Second,
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
			FrontendURL:        viper.GetString("FRONTEND_URL"),
		},
		Document: DocumentConfig{
			FontPath: viper.GetString("DOCUMENT_FONT_PATH"),
		},
		Phone: PhoneConfig{
			Region: viper.GetString("PHONE_REGION"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves the reporting timezone, falling back to UTC
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// GoogleEnabled reports whether Google sign-in is configured
func (c *OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
