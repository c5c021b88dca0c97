// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Move payload styles accepted by the upstream move-day endpoint.
const (
	// MovePayloadFromTo sends {fromDate, toDate, mode}.
	MovePayloadFromTo = "fromTo"

	// MovePayloadSourceTarget sends {sourceDate, targetDate}.
	MovePayloadSourceTarget = "sourceTarget"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string `env:"ENV" envDefault:"development"`

	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"8080"`

	// BaseURL is the public-facing URL used for links and CORS.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"db/migrations"`

	// Database holds MariaDB connection settings (audit log storage).
	Database DatabaseConfig `envPrefix:"DB_"`

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Backend holds settings for the upstream calendar REST API.
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Calendar holds tunables for calendar interactions.
	Calendar CalendarConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so
// container orchestrators can manage each independently.
// If DB_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format.
	// If no port is specified, 3306 is appended automatically.
	Host string `env:"HOST" envDefault:"localhost:3306"`

	User     string `env:"USER" envDefault:"shootcal"`
	Password string `env:"PASSWORD" envDefault:"shootcal"`
	Name     string `env:"NAME" envDefault:"shootcal"`

	// URL bypasses the individual fields when set.
	URL string `env:"URL"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN returns the go-sql-driver/mysql connection string. If DB_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() to safely handle special
// characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
}

// BackendConfig describes how to reach the upstream calendar API.
type BackendConfig struct {
	// URL is the base URL of the REST backend, without the /api suffix.
	URL string `env:"URL" envDefault:"http://localhost:5000"`

	// Timeout bounds every upstream request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// SessionCookie is the name of the browser cookie forwarded upstream so
	// the backend can authenticate the admin.
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"session"`
}

// CalendarConfig holds calendar interaction settings.
type CalendarConfig struct {
	// MovePayload selects the move-day request body shape.
	MovePayload string `env:"MOVE_PAYLOAD" envDefault:"fromTo"`

	// MoveLockTTL is how long a per-project move guard is held at most.
	MoveLockTTL time.Duration `env:"MOVE_LOCK_TTL" envDefault:"15s"`

	// PrefsTTL is how long idle client preferences are kept.
	PrefsTTL time.Duration `env:"PREFS_TTL" envDefault:"2160h"`

	// ReferenceCacheTTL is how long locations/areas/departments are cached.
	ReferenceCacheTTL time.Duration `env:"REFERENCE_CACHE_TTL" envDefault:"5m"`
}

// Load reads configuration from environment variables with sensible defaults.
// Returns the first parse error, or a validation error in production.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	switch cfg.Calendar.MovePayload {
	case MovePayloadFromTo, MovePayloadSourceTarget:
	default:
		return nil, fmt.Errorf("MOVE_PAYLOAD must be %q or %q, got %q",
			MovePayloadFromTo, MovePayloadSourceTarget, cfg.Calendar.MovePayload)
	}

	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")

	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		u, err := url.Parse(cfg.Backend.URL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("BACKEND_URL must be an absolute URL in production")
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}
