package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Token storage backends.
const (
	TokenBackendFile    = "file"
	TokenBackendKeyring = "keyring"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// Config application configuration
type Config struct {
	// OAuth
	CredentialsFile string `env:"LUMIMAIL_CREDENTIALS_FILE" envDefault:"credentials.json"`
	TokenFile       string `env:"LUMIMAIL_TOKEN_FILE" envDefault:"token.json"`
	TokenBackend    string `env:"LUMIMAIL_TOKEN_BACKEND" envDefault:"file"`
	KeyringDir      string `env:"LUMIMAIL_KEYRING_DIR" envDefault:"./data/keyring"`

	// Cache
	CacheBackend string `env:"LUMIMAIL_CACHE_BACKEND" envDefault:"sqlite"`
	CachePath    string `env:"LUMIMAIL_CACHE_PATH" envDefault:"./data/cache.db"`
	RedisAddr    string `env:"LUMIMAIL_REDIS_ADDR" envDefault:"localhost:6379"`

	// Fetching
	FreshFor       time.Duration `env:"LUMIMAIL_FRESH_FOR" envDefault:"5m"`
	ExpireAfter    time.Duration `env:"LUMIMAIL_EXPIRE_AFTER" envDefault:"10m"`
	BatchSize      int           `env:"LUMIMAIL_BATCH_SIZE" envDefault:"10"`
	BatchDelay     time.Duration `env:"LUMIMAIL_BATCH_DELAY" envDefault:"100ms"`
	PageDelay      time.Duration `env:"LUMIMAIL_PAGE_DELAY" envDefault:"200ms"`
	MetricsCap     int           `env:"LUMIMAIL_METRICS_CAP" envDefault:"1000"`
	RefreshTimeout time.Duration `env:"LUMIMAIL_REFRESH_TIMEOUT" envDefault:"2m"`

	// UI and API
	PrefsFile  string `env:"LUMIMAIL_PREFS_FILE" envDefault:"config/preferences.json"`
	ListenAddr string `env:"LUMIMAIL_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
	LogFile   string `env:"LOG_FILE" envDefault:"lumimail.log"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and inconsistent windows.
func (c *Config) Validate() error {
	switch c.TokenBackend {
	case TokenBackendFile, TokenBackendKeyring:
	default:
		return fmt.Errorf("LUMIMAIL_TOKEN_BACKEND must be %q or %q, got %q",
			TokenBackendFile, TokenBackendKeyring, c.TokenBackend)
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis:
	default:
		return fmt.Errorf("LUMIMAIL_CACHE_BACKEND must be one of memory, sqlite, redis, got %q", c.CacheBackend)
	}
	if c.ExpireAfter < c.FreshFor {
		return fmt.Errorf("LUMIMAIL_EXPIRE_AFTER (%s) must not be shorter than LUMIMAIL_FRESH_FOR (%s)",
			c.ExpireAfter, c.FreshFor)
	}
	return nil
}
