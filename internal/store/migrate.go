package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// Migrate runs all pending schema migrations.
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	return migrateUp(s.db, "sqlite", sqliteMigrations, "migrations/sqlite")
}

// Migrate runs all pending schema migrations.
func (s *PostgresStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("store not opened")
	}
	return migrateUp(s.db, "postgres", postgresMigrations, "migrations/postgres")
}

func migrateUp(db *sql.DB, dialect string, fsys embed.FS, dir string) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
