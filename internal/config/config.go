// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// When neither is set the configuration is built from environment
// variables and the env-default values below, so the service can start
// with no file at all.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Storage driver names.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
}

// Storage selects the book store backend.
type Storage struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`

	// Path is the SQLite data source. Ignored by the memory driver.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:":memory:"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// RateLimit configures the per-client token bucket. Disabled by default.
type RateLimit struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"false"`
	RPS     float64 `yaml:"rps"     env:"RATE_LIMIT_RPS"     env-default:"10"`
	Burst   int     `yaml:"burst"   env:"RATE_LIMIT_BURST"   env-default:"20"`
}

// Load reads the config file at path (if path is non-empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.Wrap(err, "cannot read config from environment")
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrap(err, "cannot read config")
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}
	return nil
}

// MustLoad resolves the config path, loads the config and exits the
// process if anything is wrong. If this returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
