// Package config provides project configuration for chartsmith. It is
// decoupled from CLI concerns so the web server and commands share one
// loader.
package config

import "fmt"

// StoreConfig holds configuration-store settings.
type StoreConfig struct {
	Type string `koanf:"type"` // sqlite, postgres

	// SQLite
	Path string `koanf:"path"` // file path, or ":memory:"

	// Postgres
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// Validate checks the store configuration.
func (s *StoreConfig) Validate() error {
	switch s.Type {
	case "sqlite", "postgres":
		return nil
	case "":
		return fmt.Errorf("store type is required")
	default:
		return fmt.Errorf("unknown store type %q (want sqlite or postgres)", s.Type)
	}
}

// DSN builds the Postgres connection string.
func (s *StoreConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		s.User, s.Password, s.Host, s.Port, s.Database)
}

// UIConfig holds web UI settings.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// Config is the full project configuration.
type Config struct {
	// DatasetsDir is where uploaded and local datasets live.
	DatasetsDir string `koanf:"datasets_dir"`

	// Loader selects the CSV ingestion path: "csv" (in-process parser) or
	// "duckdb" (load via DuckDB, for large files).
	Loader string `koanf:"loader"`

	// Encoding is the expected CSV character encoding ("utf-8", "latin-1").
	Encoding string `koanf:"encoding"`

	Store StoreConfig `koanf:"store"`
	UI    UIConfig    `koanf:"ui"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	switch c.Loader {
	case "csv", "duckdb":
	default:
		return fmt.Errorf("unknown loader %q (want csv or duckdb)", c.Loader)
	}
	return nil
}
