// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Skryldev/boxing-ring/db"
)

// Random source kinds.
const (
	RandomHTTP  = "http"
	RandomLocal = "local"
)

type Config struct {
	Port        int    `env:"PORT"         envDefault:"5001"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"boxing-ring"`
	Version     string `env:"SERVICE_VERSION"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	DB DBConfig

	RandomSource  string        `env:"RANDOM_SOURCE"  envDefault:"http"`
	RandomURL     string        `env:"RANDOM_ORG_URL" envDefault:"https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"`
	RandomTimeout time.Duration `env:"RANDOM_TIMEOUT" envDefault:"5s"`

	MetricsEnabled  bool          `env:"METRICS_ENABLED"  envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DBConfig selects the driver and how to reach it. URL, when set, is used as
// the DSN verbatim; otherwise the driver builds one from the other fields.
type DBConfig struct {
	Driver   string `env:"DB_DRIVER"   envDefault:"sqlite3"`
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"     envDefault:"boxing.db"`
	SSLMode  string `env:"DB_SSLMODE"`

	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS"  envDefault:"10"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS"  envDefault:"5"`
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT"   envDefault:"5s"`
	SlowQuery    time.Duration `env:"DB_SLOW_QUERY"      envDefault:"200ms"`
	LogArgs      bool          `env:"DB_LOG_ARGS"`
	AutoSchema   bool          `env:"DB_AUTO_SCHEMA"     envDefault:"true"`
}

// Options converts the structured fields for db.OpenWithDriver.
func (c DBConfig) Options() db.DriverOptions {
	return db.DriverOptions{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load reads an optional .env file, then parses the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if _, err := db.LookupDriver(c.DB.Driver); err != nil {
		errs = append(errs, fmt.Errorf("DB_DRIVER: %w", err))
	}
	switch c.RandomSource {
	case RandomHTTP, RandomLocal:
	default:
		errs = append(errs, fmt.Errorf("RANDOM_SOURCE must be %q or %q, got %q", RandomHTTP, RandomLocal, c.RandomSource))
	}
	if c.RandomTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RANDOM_TIMEOUT must be positive, got %s", c.RandomTimeout))
	}
	if c.DB.MaxOpenConns < 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
