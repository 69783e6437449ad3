// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/database"
)

// TestDB wraps a migrated test database.
type TestDB struct {
	DB     *database.DB
	Conn   *sql.DB
	Path   string
	Logger zerolog.Logger
}

// NewTestDB creates a migrated database in a temp directory. The database
// is closed automatically when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	tmpDir := t.TempDir()
	logger := NewTestLogger(t)

	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tdb := &TestDB{
		DB:     db,
		Conn:   db.Conn(),
		Path:   tmpDir,
		Logger: logger,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close closes the database.
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		tdb.DB.Close()
	}
}

// CreateUser inserts a user row directly and returns its id.
func (tdb *TestDB) CreateUser(t *testing.T, username string, public bool) int64 {
	t.Helper()
	privacy := "private"
	if public {
		privacy = "public"
	}
	now := time.Now().UTC()
	res, err := tdb.Conn.Exec(
		`INSERT INTO users (username, password_hash, profile_privacy, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		username, "not-a-real-hash", privacy, now, now,
	)
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read user id: %v", err)
	}
	return id
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// Clock is a manually advanced clock for services that take a now func.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
