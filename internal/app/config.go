package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH" default:"./data/ledger.db"`
	PGDSN       string `envconfig:"PG_DSN"`

	// RedisAddr enables the distributed settle lock. Empty keeps it in-process.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"10s"`
	LockTries      int           `envconfig:"LOCK_TRIES" default:"20"`
	LockRetryDelay time.Duration `envconfig:"LOCK_RETRY_DELAY" default:"50ms"`

	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	CORSOrigin         string `envconfig:"CORS_ORIGIN" default:"*"`

	// ViewerID is the default viewer for CLI commands.
	ViewerID string `envconfig:"VIEWER_ID"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case sqlstore.DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH must be provided for the sqlite driver")
		}
	case sqlstore.DriverPostgres:
		if c.PGDSN == "" {
			return errors.New("PG_DSN must be provided for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.LockTries < 1 {
		return errors.New("LOCK_TRIES must be at least 1")
	}
	if c.RateLimitPerMinute < 1 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// StoreDSN returns the data source for the configured driver.
func (c *Config) StoreDSN() string {
	if c.StoreDriver == sqlstore.DriverPostgres {
		return c.PGDSN
	}
	return c.DBPath
}
