package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "./data/ledger.db", cfg.StoreDSN())
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, 20, cfg.LockTries)
	assert.Equal(t, 50*time.Millisecond, cfg.LockRetryDelay)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("PG_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.StoreDSN())
	assert.Equal(t, 3*time.Second, cfg.LockTTL)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{StoreDriver: "sqlite", DBPath: "x.db", LockTries: 1, RateLimitPerMinute: 1}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }, "unsupported STORE_DRIVER"},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = "postgres" }, "PG_DSN"},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, "DB_PATH"},
		{"zero lock tries", func(c *Config) { c.LockTries = 0 }, "LOCK_TRIES"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "RATE_LIMIT_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
