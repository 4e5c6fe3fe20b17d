// Package store persists saved chart configurations. Each saved
// configuration is one immutable record keyed by a ConfigID; "editing" a
// saved configuration means saving a new record. Implementations exist for
// SQLite (the default, single file on disk) and Postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/chartsmith/internal/chart"
)

// ErrNotFound indicates no record exists for the requested id.
var ErrNotFound = errors.New("config not found")

// SavedConfig is a persisted chart configuration plus its identity.
type SavedConfig struct {
	ID      string       `json:"id"`
	Config  chart.Config `json:"config"`
	SavedAt time.Time    `json:"saved_at"`
}

// Store is durable key/value storage for chart configurations.
//
// SaveConfig assigns a fresh random id on every call, never overwriting an
// existing record, so concurrent saves from different sessions cannot
// collide. Saved records are immutable; the only mutation is DeleteConfig.
type Store interface {
	// SaveConfig persists cfg under a newly allocated id and returns it.
	SaveConfig(ctx context.Context, cfg *chart.Config) (string, error)

	// GetConfig loads a saved configuration. Returns an error wrapping
	// ErrNotFound if the id is absent.
	GetConfig(ctx context.Context, id string) (*SavedConfig, error)

	// ListConfigs returns all saved configurations, newest first.
	ListConfigs(ctx context.Context) ([]*SavedConfig, error)

	// DeleteConfig removes a saved configuration. Returns an error wrapping
	// ErrNotFound if the id is absent.
	DeleteConfig(ctx context.Context, id string) error

	// Close releases the underlying database handle.
	Close() error
}
