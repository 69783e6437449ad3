package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func insertUser(t *testing.T, db *DB, name string) int64 {
	t.Helper()
	res, err := db.Conn().Exec(`INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, 'x', datetime('now'), datetime('now'))`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)

	version, err := db.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"users", "library_entries", "user_lists", "list_items"} {
		var name string
		err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.MigrateDown(ctx))

	var name string
	err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='users'`).Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, db.Migrate(ctx))
}

func TestUsernameCaseInsensitiveUnique(t *testing.T) {
	db := openTestDB(t)
	insertUser(t, db, "Alice")

	_, err := db.Conn().Exec(`INSERT INTO users (username, password_hash, created_at, updated_at) VALUES ('alice', 'x', datetime('now'), datetime('now'))`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestLibraryTripleUnique(t *testing.T) {
	db := openTestDB(t)
	uid := insertUser(t, db, "bob")

	const q = `INSERT INTO library_entries (user_id, media_type, external_id, title, status, added_at, updated_at)
		VALUES (?, ?, ?, 'Dune', 'planned', datetime('now'), datetime('now'))`

	_, err := db.Conn().Exec(q, uid, "book", "abc")
	require.NoError(t, err)

	_, err = db.Conn().Exec(q, uid, "book", "abc")
	assert.True(t, IsUniqueViolation(err))

	// same external id under another media type is a different item
	_, err = db.Conn().Exec(q, uid, "movie", "abc")
	assert.NoError(t, err)

	_, err = db.Conn().Exec(q, uid, "podcast", "xyz")
	assert.True(t, IsCheckViolation(err))
}

func TestListItemsCascade(t *testing.T) {
	db := openTestDB(t)
	uid := insertUser(t, db, "carol")

	res, err := db.Conn().Exec(`INSERT INTO library_entries (user_id, media_type, external_id, title, status, added_at, updated_at)
		VALUES (?, 'game', '1942', 'The Witcher 3', 'playing', datetime('now'), datetime('now'))`, uid)
	require.NoError(t, err)
	entryID, _ := res.LastInsertId()

	res, err = db.Conn().Exec(`INSERT INTO user_lists (user_id, title, created_at, updated_at) VALUES (?, 'RPGs', datetime('now'), datetime('now'))`, uid)
	require.NoError(t, err)
	listID, _ := res.LastInsertId()

	_, err = db.Conn().Exec(`INSERT INTO list_items (list_id, library_entry_id, position, added_at) VALUES (?, ?, 1, datetime('now'))`, listID, entryID)
	require.NoError(t, err)

	_, err = db.Conn().Exec(`INSERT INTO list_items (list_id, library_entry_id, position, added_at) VALUES (?, 999, 2, datetime('now'))`, listID)
	assert.True(t, IsForeignKeyViolation(err))

	_, err = db.Conn().Exec(`DELETE FROM library_entries WHERE id = ?`, entryID)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM list_items WHERE list_id = ?`, listID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTx_RollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password_hash, created_at, updated_at) VALUES ('dave', 'x', datetime('now'), datetime('now'))`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 0, count)
}
