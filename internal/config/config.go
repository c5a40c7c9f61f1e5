package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"

	defaultJWTSecret = "dev-secret"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Geo      GeoConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"org-admin"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	OpTimeout   time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"500ms"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret  string        `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	// LoginRate uses the ulule/limiter formatted notation, e.g. "10-M".
	LoginRate string `env:"AUTH_LOGIN_RATE" envDefault:"10-M"`
}

// GeoConfig points at the third-party geography service.
type GeoConfig struct {
	BaseURL  string        `env:"GEO_API_BASE_URL" envDefault:"https://countriesnow.space/api/v0.1"`
	CacheTTL time.Duration `env:"GEO_CACHE_TTL" envDefault:"12h"`
	Timeout  time.Duration `env:"GEO_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run.
func (c *Config) Validate() error {
	if c.App.IsProduction() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret) {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether secure-cookie behavior should be enabled.
func (a AppConfig) IsProduction() bool {
	return a.Env == EnvProduction
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
