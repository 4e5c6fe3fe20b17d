package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/chartsmith/internal/chart"
)

// SQLiteStore implements Store using a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates an unopened SQLite store. logger may be nil.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database at path. Use ":memory:" for an in-memory
// database (tests). File databases run in WAL mode.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened config store", "path", path)
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig persists cfg under a fresh UUID.
func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg *chart.Config) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("store not opened")
	}

	id := uuid.New().String()
	row, err := newConfigRow(id, cfg, time.Now().UTC())
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chart_configs (id, name, chart_type, x_axis, y_axes, filters, aggregation, created_at, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.name, row.chartType, row.xAxis, row.yAxes, row.filters, row.aggregation, row.createdAt, row.savedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Debug("saved chart config", "id", id, "name", row.name)
	return id, nil
}

// GetConfig loads one saved configuration by id.
func (s *SQLiteStore) GetConfig(ctx context.Context, id string) (*SavedConfig, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, chart_type, x_axis, y_axes, filters, aggregation, created_at, saved_at
		 FROM chart_configs WHERE id = ?`, id)

	saved, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config %s: %w", id, err)
	}
	return saved, nil
}

// ListConfigs returns every saved configuration, newest first.
func (s *SQLiteStore) ListConfigs(ctx context.Context) ([]*SavedConfig, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, chart_type, x_axis, y_axes, filters, aggregation, created_at, saved_at
		 FROM chart_configs ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []*SavedConfig
	for rows.Next() {
		saved, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		configs = append(configs, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	return configs, nil
}

// DeleteConfig removes a saved configuration.
func (s *SQLiteStore) DeleteConfig(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM chart_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete config %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete config %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("config %s: %w", id, ErrNotFound)
	}

	s.logger.Debug("deleted chart config", "id", id)
	return nil
}

// configRow is the flattened column form of a SavedConfig. Filters and the
// y column list travel as JSON text, matching the original record layout.
type configRow struct {
	id          string
	name        string
	chartType   string
	xAxis       string
	yAxes       string
	filters     string
	aggregation string
	createdAt   string
	savedAt     string
}

func newConfigRow(id string, cfg *chart.Config, savedAt time.Time) (*configRow, error) {
	yAxes, err := json.Marshal(cfg.YAxes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode y_axes: %w", err)
	}
	filters := []chart.Filter(cfg.Filters)
	if filters == nil {
		filters = []chart.Filter{}
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	agg := cfg.Aggregation
	if agg == "" {
		agg = chart.AggNone
	}

	return &configRow{
		id:          id,
		name:        cfg.DefaultName(),
		chartType:   string(cfg.Type),
		xAxis:       cfg.XAxis,
		yAxes:       string(yAxes),
		filters:     string(filtersJSON),
		aggregation: string(agg),
		createdAt:   cfg.CreatedAt.UTC().Format(time.RFC3339Nano),
		savedAt:     savedAt.Format(time.RFC3339Nano),
	}, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(sc scanner) (*SavedConfig, error) {
	var row configRow
	if err := sc.Scan(
		&row.id, &row.name, &row.chartType, &row.xAxis, &row.yAxes,
		&row.filters, &row.aggregation, &row.createdAt, &row.savedAt,
	); err != nil {
		return nil, err
	}
	return row.toSaved()
}

func (r *configRow) toSaved() (*SavedConfig, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for config %s: %w", r.id, err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, r.savedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt saved_at for config %s: %w", r.id, err)
	}
	cfg := chart.Config{
		Name:        r.name,
		Type:        chart.Type(r.chartType),
		XAxis:       r.xAxis,
		Aggregation: chart.Aggregation(r.aggregation),
		CreatedAt:   createdAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.yAxes), &cfg.YAxes); err != nil {
		return nil, fmt.Errorf("corrupt y_axes for config %s: %w", r.id, err)
	}
	if err := json.Unmarshal([]byte(r.filters), &cfg.Filters); err != nil {
		return nil, fmt.Errorf("corrupt filters for config %s: %w", r.id, err)
	}
	return &SavedConfig{
		ID:      r.id,
		Config:  cfg,
		SavedAt: savedAt.UTC(),
	}, nil
}

// InMemory reports whether the store is backed by an in-memory database.
func (s *SQLiteStore) InMemory() bool {
	return s.path == ":memory:" || strings.HasPrefix(s.path, "file::memory:")
}
