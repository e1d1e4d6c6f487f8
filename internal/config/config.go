package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	minSecretLen = 32
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string        `env:"PORT"                        envDefault:"3000"`
	APIPath           string        `env:"API_PATH"                    envDefault:"/api"`
	StoreDriver       string        `env:"STORE_DRIVER"                envDefault:"postgres"`
	DBURL             string        `env:"DB_URL"`
	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"TOKEN_TTL"                   envDefault:"168h"`
	DocsPath          string        `env:"DOCS_PATH"                   envDefault:"docs/notflix.pdf"`
	SeedPath          string        `env:"SEED_PATH"`
	AMQPURL           string        `env:"AMQP_URL"`
	AMQPQueue         string        `env:"AMQP_QUEUE"                  envDefault:"rating-events"`
	ReadTimeoutSecs   int           `env:"SERVER_READ_TIMEOUT"         envDefault:"15"`
	WriteTimeoutSecs  int           `env:"SERVER_WRITE_TIMEOUT"        envDefault:"15"`
	IdleTimeoutSecs   int           `env:"SERVER_IDLE_TIMEOUT"         envDefault:"60"`
	DBMaxConns        int           `env:"DB_MAX_CONNS"                envDefault:"20"`
	DBMinConns        int           `env:"DB_MIN_CONNS"                envDefault:"2"`
	DBMaxIdleSecs     int           `env:"DB_MAX_CONN_IDLE_SECS"       envDefault:"300"`
	DBMaxLifeSecs     int           `env:"DB_MAX_CONN_LIFETIME_SECS"   envDefault:"3600"`
	DBConnTimeoutSecs int           `env:"DB_CONN_TIMEOUT_SECS"        envDefault:"10"`
	DBStatementCache  int           `env:"DB_STATEMENT_CACHE_CAPACITY" envDefault:"256"`
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIPath = "/" + strings.Trim(cfg.APIPath, "/")

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}
