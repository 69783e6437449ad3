package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Querier is satisfied by *sql.DB and *sql.Tx, so stores can run inside or
// outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// New opens (creating if needed) the SQLite database at path.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL for concurrent readers; foreign keys drive list membership cascades
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) goose() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate runs all pending migrations.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.goose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the last migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.goose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.conn, "migrations"); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// MigrationStatus prints the migration status through goose's logger.
func (db *DB) MigrationStatus(ctx context.Context) error {
	if err := db.goose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.conn, "migrations")
}

// Version returns the current schema version.
func (db *DB) Version(ctx context.Context) (int64, error) {
	if err := db.goose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.conn)
}

// WithTx runs fn inside a transaction, rolling back when fn fails.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
