package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"milk-delivery-api/models"
)

// ErrMissingSecret is returned outside development when JWT_SECRET is empty.
var ErrMissingSecret = errors.New("JWT_SECRET must be set outside development")

type Config struct {
	Port          string
	Env           string
	DBDriver      string
	DatabaseURL   string
	JWTSecret     []byte
	TokenTTL      time.Duration
	LogLevel      string
	AdminEmail    string
	AdminPassword string
	GinMode       string
}

// IsDevelopment reports whether the service runs with development defaults.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment, after a best-effort .env load.
// Precedence: explicit env var > .env file > default.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "milkdelivery.db")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_EMAIL", "admin@milk.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("GIN_MODE", "debug")
	v.AutomaticEnv()

	cfg := Config{
		Port:          v.GetString("PORT"),
		Env:           v.GetString("APP_ENV"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		GinMode:       v.GetString("GIN_MODE"),
	}
	if cfg.TokenTTL <= 0 {
		return cfg, fmt.Errorf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}

	secret := v.GetString("JWT_SECRET")
	switch {
	case secret != "":
		cfg.JWTSecret = []byte(secret)
	case cfg.IsDevelopment():
		cfg.JWTSecret = randomSecret()
	default:
		return cfg, ErrMissingSecret
	}
	return cfg, nil
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random secret: %v", err))
	}
	return []byte(hex.EncodeToString(buf))
}

// NewLogger builds the process logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// OpenDB connects to the configured database.
func OpenDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
