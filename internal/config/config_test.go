package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StateBackendRedis, cfg.StateBackend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "R$", cfg.Calculator.CurrencySymbol)
	assert.Equal(t, 2, cfg.Calculator.DefaultRows)
	assert.Equal(t, int64(30), cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("STATE_BACKEND", "memory")
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("DEFAULT_ROWS", "3")
	t.Setenv("CURRENCY_SYMBOL", "€")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "pricecompare")
	t.Setenv("REDIS_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StateBackendMemory, cfg.StateBackend)
	assert.Equal(t, []int64{10, 20}, cfg.Admin.IDs)
	assert.True(t, cfg.IsAdmin(20))
	assert.False(t, cfg.IsAdmin(30))
	assert.Equal(t, 3, cfg.Calculator.DefaultRows)
	assert.Equal(t, "€", cfg.Calculator.CurrencySymbol)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "host=db port=5432 user=app password= dbname=pricecompare sslmode=disable", cfg.Database.DSN())
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{StateBackend: StateBackendRedis, Calculator: CalculatorConfig{DefaultRows: 1}}
	require.NoError(t, base.Validate())

	bad := base
	bad.StateBackend = "etcd"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Calculator.DefaultRows = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Database.Host = "db"
	assert.Error(t, bad.Validate())
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "pricecompare")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_SSLMODE", "disable")

	db, err := LoadDatabase()
	require.NoError(t, err)

	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, 25, db.MaxOpenConns)
	assert.Equal(t, "host=db port=6543 user=app password= dbname=pricecompare sslmode=disable", db.DSN())
}

func TestLoadDatabaseErrors(t *testing.T) {
	t.Setenv("DB_HOST", "")

	_, err := LoadDatabase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")

	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "pricecompare")

	_, err = LoadDatabase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
}
