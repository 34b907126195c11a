package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Tally", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "USD", cfg.App.CurrencyCode)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.AMQP.URL)
	assert.Equal(t, "./data/tally.db", cfg.ConnectionString())
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "tally")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.AMQP.URL)
	assert.Equal(t, "postgres://tally:p%40ss%20word@db:5432/tally?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("CURRENCY_CODE", "EURO")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "CURRENCY_CODE")
}
