package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "admin@milk.com", cfg.AdminEmail)
	assert.Len(t, cfg.JWTSecret, 64, "development gets a random hex secret")
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDB(Config{DBDriver: "mongo"})
	assert.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := OpenDB(Config{DBDriver: "sqlite", DatabaseURL: "file:config_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("bookings"))
	assert.True(t, db.Migrator().HasTable("monthly_subscriptions"))
}
