package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chartsmith/internal/chart"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStoreWithDB(db, nil), mock
}

func TestPostgresStore_SaveConfig(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO chart_configs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.SaveConfig(context.Background(), barConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveConfigDriverError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO chart_configs").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.SaveConfig(context.Background(), barConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save config")
}

func TestPostgresStore_GetConfig(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := sqlmock.NewRows([]string{
		"id", "name", "chart_type", "x_axis", "y_axes",
		"filters", "aggregation", "created_at", "saved_at",
	}).AddRow(
		"abc", "sales by region", "bar", "region", `["sales"]`,
		`[]`, "sum", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM chart_configs WHERE id").
		WithArgs("abc").
		WillReturnRows(rows)

	saved, err := s.GetConfig(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", saved.ID)
	assert.Equal(t, chart.TypeBar, saved.Config.Type)
	assert.Equal(t, []string{"sales"}, saved.Config.YAxes)
	assert.Equal(t, chart.AggSum, saved.Config.Aggregation)
}

func TestPostgresStore_GetConfigNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM chart_configs WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetConfig(context.Background(), "ghost")
	require.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)
}

func TestPostgresStore_DeleteNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM chart_configs").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteConfig(context.Background(), "ghost")
	require.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)
}

func TestPostgresStore_CorruptRecord(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := sqlmock.NewRows([]string{
		"id", "name", "chart_type", "x_axis", "y_axes",
		"filters", "aggregation", "created_at", "saved_at",
	}).AddRow(
		"abc", "bad", "bar", "region", `not-json`,
		`[]`, "none", now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM chart_configs WHERE id").
		WithArgs("abc").
		WillReturnRows(rows)

	_, err := s.GetConfig(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt y_axes")
}
