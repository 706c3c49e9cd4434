// Package config loads the service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Store selects the persistence backend: "memory" or "postgres".
	Store string `yaml:"store"`

	// DatabaseURL is the postgres connection string; required when
	// Store is "postgres".
	DatabaseURL string `yaml:"database_url"`

	// JWTSecret signs bearer tokens.
	JWTSecret string `yaml:"jwt_secret"`

	// LockTimeout bounds the wait for resource locks during approval.
	LockTimeout Duration `yaml:"lock_timeout"`

	Tracing TracingConfig `yaml:"tracing"`
}

// Duration parses YAML values like "500ms" or "3s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Load reads the config file at path (missing file is fine), applies
// environment overrides, then defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("VENUEHUB_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("VENUEHUB_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("VENUEHUB_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
		cfg.Tracing.Enabled = true
	}

	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Store == "" {
		cfg.Store = "memory"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev_secret_change_in_prod"
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = Duration(3 * time.Second)
	}

	if cfg.Store != "memory" && cfg.Store != "postgres" {
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.Store == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres store requires DATABASE_URL")
	}

	return cfg, nil
}
