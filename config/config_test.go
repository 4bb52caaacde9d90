package config_test

import (
	"testing"
	"time"

	"Parking/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "offline", cfg.Payment.Driver)
	assert.Equal(t, "console", cfg.Notifier.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.Database.DSN, "dbname=parking")
	assert.Contains(t, cfg.Database.DSN, "TimeZone=UTC")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_TIMEZONE", "Asia/Tehran")
	t.Setenv("DB_DSN", "postgres://u:p@db/parking")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://u:p@db/parking", cfg.Database.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tehran", loc.String())
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err := config.Load()
	assert.Error(t, err)
}
