// Package commands implements the chartsmith subcommands.
package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/chartsmith/internal/config"
	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/dataset/ducksrc"
	"github.com/leapstack-labs/chartsmith/internal/export"
	"github.com/leapstack-labs/chartsmith/internal/store"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// getConfig returns the configuration from the context, falling back to
// defaults when a command runs without the root's PersistentPreRunE.
func getConfig(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

// getLogger returns the logger from the context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// openStore opens the configured config store and runs migrations.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Type {
	case "postgres":
		s := store.NewPostgresStore(logger)
		if err := s.Open(cfg.Store.DSN()); err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		s := store.NewSQLiteStore(logger)
		if err := s.Open(cfg.Store.Path); err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	}
}

// newLoadFunc builds the dataset loader the configuration selects. The
// DuckDB loader only covers CSV; Excel files always go through the
// in-process loader.
func newLoadFunc(cfg *config.Config) (func(ctx context.Context, path string) (*dataset.Dataset, error), func(), error) {
	opts := dataset.CSVOptions{Encoding: cfg.Encoding}

	if cfg.Loader == "duckdb" {
		src := ducksrc.New()
		if err := src.Connect(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("failed to start duckdb loader: %w", err)
		}
		load := func(ctx context.Context, path string) (*dataset.Dataset, error) {
			if strings.EqualFold(filepath.Ext(path), ".csv") {
				return src.LoadCSV(ctx, path)
			}
			return dataset.Load(path, opts)
		}
		return load, func() { _ = src.Close() }, nil
	}

	load := func(_ context.Context, path string) (*dataset.Dataset, error) {
		return dataset.Load(path, opts)
	}
	return load, func() {}, nil
}

// loadDataset loads one file using the configured loader.
func loadDataset(ctx context.Context, cfg *config.Config, path string) (*dataset.Dataset, error) {
	load, cleanup, err := newLoadFunc(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return load(ctx, path)
}

// readConfigFile reads a chart configuration document, picking the format
// from the file extension.
func readConfigFile(path string) (*export.Format, []byte, error) {
	format := export.FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = export.FormatYAML
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return &format, data, nil
}

// generateSessionSecret returns the configured session secret, or a random
// one for this process when none is set.
func generateSessionSecret(cfg *config.Config) string {
	if cfg.UI.SessionSecret != "" {
		return cfg.UI.SessionSecret
	}
	if secret := os.Getenv("CHARTSMITH_SESSION_SECRET"); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
