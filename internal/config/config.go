package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Permission sources consulted by the access guard.
const (
	PermissionSourceStore = "store"
	PermissionSourceToken = "token"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
	CORS     CORSConfig     `envPrefix:"CORS_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Platform PlatformConfig `envPrefix:"PLATFORM_"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	DBName          string        `env:"NAME" envDefault:"backoffice"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"warn"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type CacheConfig struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	Type           string        `env:"TYPE" envDefault:"memory"`
	TenantTTL      time.Duration `env:"TENANT_TTL" envDefault:"1m"`
	PermissionsTTL time.Duration `env:"PERMISSIONS_TTL" envDefault:"5m"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type MetricsConfig struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AllowedMethods []string `env:"ALLOWED_METHODS" envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS" envSeparator:","`
	AllowedHeaders []string `env:"ALLOWED_HEADERS" envDefault:"Accept,Authorization,Content-Type,X-Tenant-Subdomain,X-Platform-Key,X-Request-ID" envSeparator:","`
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	Issuer           string        `env:"ISSUER" envDefault:"lexdesk-backoffice"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"8h"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	PermissionSource string        `env:"PERMISSION_SOURCE" envDefault:"store"`
	LoginRate        float64       `env:"LOGIN_RATE" envDefault:"1"`
	LoginBurst       int           `env:"LOGIN_BURST" envDefault:"5"`
}

type PlatformConfig struct {
	APIKey string `env:"API_KEY"`
}

// Load reads configuration from the environment, after loading an optional .env file
func Load() (*Config, error) {
	// .env is only present in local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid bcrypt cost: %d", c.Auth.BcryptCost))
	}
	switch c.Auth.PermissionSource {
	case PermissionSourceStore, PermissionSourceToken:
	default:
		errs = append(errs, fmt.Errorf("unknown permission source: %q", c.Auth.PermissionSource))
	}
	if c.Auth.LoginRate <= 0 || c.Auth.LoginBurst <= 0 {
		errs = append(errs, errors.New("login rate and burst must be positive"))
	}
	if c.Cache.Enabled && c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		errs = append(errs, fmt.Errorf("unknown cache type: %q", c.Cache.Type))
	}

	return errors.Join(errs...)
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
