package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/tally/internal/database"
)

// DriverMemory keeps everything in process; nothing survives a restart.
const DriverMemory = "memory"

type Config struct {
	App struct {
		Name         string `envconfig:"APP_NAME" default:"Tally"`
		Port         int    `envconfig:"PORT" default:"8080"`
		CurrencyCode string `envconfig:"CURRENCY_CODE" default:"USD"`
		Timezone     string `envconfig:"TIMEZONE" default:"UTC"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
		Host       string `envconfig:"DB_HOST" default:"localhost"`
		Port       int    `envconfig:"DB_PORT" default:"5432"`
		User       string `envconfig:"DB_USER" default:"postgres"`
		Password   string `envconfig:"DB_PASSWORD" default:""`
		Name       string `envconfig:"DB_NAME" default:"tally"`
		SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/tally.db"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"tally.events"`
	}
}

// ConnectionString returns the DSN for the configured SQL driver.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == string(database.DriverSQLite) {
		return c.DB.SQLitePath
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// Location resolves App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case string(database.DriverPostgres), string(database.DriverSQLite), DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q: want postgres, sqlite or memory", c.DB.Driver))
	}

	if c.App.Port < 1 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.App.Port))
	}

	if len(c.App.CurrencyCode) != 3 {
		errs = append(errs, fmt.Errorf("invalid CURRENCY_CODE %q: want an ISO 4217 code", c.App.CurrencyCode))
	}

	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("SERVER_TIMEOUT must be positive"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
