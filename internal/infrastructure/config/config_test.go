package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"FIXDESK_APP_NAME",
	"FIXDESK_APP_ENV",
	"FIXDESK_APP_PORT",
	"FIXDESK_DATABASE_DRIVER",
	"FIXDESK_DATABASE_PATH",
	"FIXDESK_DATABASE_HOST",
	"FIXDESK_DATABASE_PORT",
	"FIXDESK_DATABASE_PASSWORD",
	"FIXDESK_DATABASE_SSLMODE",
	"FIXDESK_DATABASE_MAX_OPEN_CONNS",
	"FIXDESK_DATABASE_MAX_IDLE_CONNS",
	"FIXDESK_INVENTORY_ALLOW_NEGATIVE_STOCK",
	"FIXDESK_INVENTORY_BARCODE_ATTEMPTS",
	"FIXDESK_BILLING_SUPPLIER_DUE_DAYS",
	"FIXDESK_AUDIT_MODE",
	"FIXDESK_EVENT_IDEMPOTENCY_BACKEND",
	"FIXDESK_SCHEDULER_SWEEP_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v) // registers restore
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fixdesk-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "fixdesk", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Inventory.AllowNegativeStock)
		assert.Equal(t, 20, cfg.Inventory.BarcodeAttempts)
		assert.Equal(t, 30, cfg.Billing.SupplierDueDays)
		assert.Equal(t, "best_effort", cfg.Audit.Mode)
		assert.Equal(t, "memory", cfg.Event.IdempotencyBackend)
		assert.True(t, cfg.Event.IdempotencyEnabled)
		assert.Equal(t, time.Hour, cfg.Scheduler.SweepInterval)
	})

	t.Run("loads values from environment variables with FIXDESK prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_APP_NAME", "shop")
		t.Setenv("FIXDESK_APP_PORT", "9000")
		t.Setenv("FIXDESK_DATABASE_DRIVER", "sqlite")
		t.Setenv("FIXDESK_DATABASE_PATH", "/tmp/shop.db")
		t.Setenv("FIXDESK_INVENTORY_ALLOW_NEGATIVE_STOCK", "false")
		t.Setenv("FIXDESK_INVENTORY_BARCODE_ATTEMPTS", "5")
		t.Setenv("FIXDESK_BILLING_SUPPLIER_DUE_DAYS", "45")
		t.Setenv("FIXDESK_AUDIT_MODE", "transactional")
		t.Setenv("FIXDESK_EVENT_IDEMPOTENCY_BACKEND", "redis")
		t.Setenv("FIXDESK_SCHEDULER_SWEEP_INTERVAL", "10m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shop", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/shop.db", cfg.Database.DSN())
		assert.False(t, cfg.Inventory.AllowNegativeStock)
		assert.Equal(t, 5, cfg.Inventory.BarcodeAttempts)
		assert.Equal(t, 45, cfg.Billing.SupplierDueDays)
		assert.Equal(t, "transactional", cfg.Audit.Mode)
		assert.Equal(t, "redis", cfg.Event.IdempotencyBackend)
		assert.Equal(t, 10*time.Minute, cfg.Scheduler.SweepInterval)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("FIXDESK_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown audit mode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_AUDIT_MODE", "sometimes")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit.mode")
	})

	t.Run("production requires database password and ssl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		t.Setenv("FIXDESK_DATABASE_PASSWORD", "secret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		t.Setenv("FIXDESK_DATABASE_SSLMODE", "require")
		_, err = Load()
		require.NoError(t, err)
	})

	t.Run("production on sqlite skips postgres checks", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIXDESK_APP_ENV", "production")
		t.Setenv("FIXDESK_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.NoError(t, err)
	})
}

func TestFromViper_ExplicitValues(t *testing.T) {
	v := viper.New()
	v.Set("inventory.allow_negative_stock", false)
	v.Set("billing.credit_validity_days", 90)
	v.Set("http.trusted_proxies", []string{"10.0.0.1"})

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.False(t, cfg.Inventory.AllowNegativeStock)
	assert.Equal(t, 90, cfg.Billing.CreditValidityDays)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.HTTP.TrustedProxies)
	assert.Equal(t, 0, cfg.HTTP.RateLimit)
	assert.Equal(t, time.Minute, cfg.HTTP.RateWindow)

	v = viper.New()
	v.Set("http.rate_limit", -1)
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestFromViper_Telemetry(t *testing.T) {
	v := viper.New()
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, time.Minute, cfg.Telemetry.MetricsInterval)

	v = viper.New()
	v.Set("telemetry.sampling_ratio", 1.5)
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling_ratio")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db",
			Port:     5432,
			User:     "shop",
			Password: "p@ss word",
			DBName:   "fixdesk",
			SSLMode:  "disable",
		}
		dsn := d.DSN()
		assert.Contains(t, dsn, "postgres://shop:p%40ss%20word@db:5432/fixdesk")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", Path: "data/shop.db"}
		assert.Equal(t, "data/shop.db", d.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}

func TestFromViper_SchedulerLock(t *testing.T) {
	v := viper.New()
	v.Set("scheduler.distributed_lock", true)
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.Scheduler.DistributedLock)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.LockTTL)

	v.Set("scheduler.lock_ttl", "1m")
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock_ttl")
}

func TestFromViper_Hardening(t *testing.T) {
	v := viper.New()
	v.Set("app.env", "production")
	v.Set("database.driver", "sqlite")
	v.Set("http.ssl_redirect", true)
	v.Set("http.hsts_seconds", 31536000)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.HTTP.SSLRedirect)
	assert.Equal(t, int64(31536000), cfg.HTTP.HSTSSeconds)
}
