package lists

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/library"
	"github.com/mediashelf/mediashelf/internal/testutil"
)

type testEnv struct {
	service *Service
	library *library.Service
	clock   *testutil.Clock
	tdb     *testutil.TestDB
	alice   int64
	bob     int64
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	clock := testutil.NewClock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))

	svc := NewService(tdb.DB, tdb.Logger)
	svc.SetClock(clock.Now)
	lib := library.NewService(tdb.Conn, config.LibraryConfig{RatingMax: 20, RatingPrecision: 2}, tdb.Logger)
	lib.SetClock(clock.Now)

	return &testEnv{
		service: svc,
		library: lib,
		clock:   clock,
		tdb:     tdb,
		alice:   tdb.CreateUser(t, "alice", false),
		bob:     tdb.CreateUser(t, "bob", false),
	}
}

func (env *testEnv) addEntry(t *testing.T, userID int64, externalID, title string) *library.Entry {
	t.Helper()
	e, err := env.library.Add(context.Background(), userID, library.AddInput{
		MediaType:  "movie",
		ExternalID: externalID,
		Title:      title,
	})
	require.NoError(t, err)
	return e
}

func TestCreateAndGet(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	_, err := env.service.Create(ctx, env.alice, CreateInput{Title: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	list, err := env.service.Create(ctx, env.alice, CreateInput{Title: " Favourites ", Description: "best of"})
	require.NoError(t, err)
	assert.Equal(t, "Favourites", list.Title)
	assert.False(t, list.IsPublic)

	got, err := env.service.Get(ctx, env.alice, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "best of", got.Description)
	assert.Empty(t, got.Items)

	// Private lists are invisible to others.
	_, err = env.service.Get(ctx, env.bob, list.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestItems_OrderAndRules(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	list, err := env.service.Create(ctx, env.alice, CreateInput{Title: "Sci-fi"})
	require.NoError(t, err)
	created := list.UpdatedAt

	matrix := env.addEntry(t, env.alice, "603", "The Matrix")
	inception := env.addEntry(t, env.alice, "27205", "Inception")
	bobs := env.addEntry(t, env.bob, "603", "The Matrix")

	env.clock.Advance(time.Minute)
	first, err := env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: inception.ID, Comment: "dreams"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "Inception", first.Title)

	second, err := env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: matrix.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	_, err = env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: matrix.ID})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: bobs.ID})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = env.service.AddItem(ctx, env.bob, list.ID, AddItemInput{LibraryEntryID: bobs.ID})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := env.service.Get(ctx, env.alice, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, inception.ID, got.Items[0].LibraryEntryID)
	assert.Equal(t, matrix.ID, got.Items[1].LibraryEntryID)
	assert.True(t, got.UpdatedAt.After(created))

	env.clock.Advance(time.Minute)
	updated, err := env.service.UpdateItem(ctx, env.alice, list.ID, second.ID, UpdateItemInput{Comment: ptr("red pill")})
	require.NoError(t, err)
	assert.Equal(t, "red pill", updated.Comment)

	require.NoError(t, env.service.RemoveItem(ctx, env.alice, list.ID, first.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.service.RemoveItem(ctx, env.alice, list.ID, first.ID)))

	// Positions keep growing after removals.
	third, err := env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: inception.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Position)

	got, err = env.service.Get(ctx, env.alice, list.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(env.clock.Now()))
}

func TestRemovingLibraryEntryRemovesListItems(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	list, err := env.service.Create(ctx, env.alice, CreateInput{Title: "Watch again"})
	require.NoError(t, err)
	entry := env.addEntry(t, env.alice, "603", "The Matrix")
	_, err = env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: entry.ID})
	require.NoError(t, err)

	require.NoError(t, env.library.Remove(ctx, env.alice, entry.ID))

	got, err := env.service.Get(ctx, env.alice, list.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestListForUser_Visibility(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	private, err := env.service.Create(ctx, env.alice, CreateInput{Title: "Private"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	public, err := env.service.Create(ctx, env.alice, CreateInput{Title: "Public", IsPublic: true})
	require.NoError(t, err)

	entry := env.addEntry(t, env.alice, "603", "The Matrix")
	env.clock.Advance(time.Minute)
	_, err = env.service.AddItem(ctx, env.alice, private.ID, AddItemInput{LibraryEntryID: entry.ID})
	require.NoError(t, err)

	own, err := env.service.ListForUser(ctx, env.alice, env.alice)
	require.NoError(t, err)
	require.Len(t, own, 2)
	// The item add touched the private list, so it sorts first.
	assert.Equal(t, private.ID, own[0].ID)
	assert.Equal(t, 1, own[0].ItemCount)
	assert.Equal(t, 0, own[1].ItemCount)

	others, err := env.service.ListForUser(ctx, env.bob, env.alice)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, public.ID, others[0].ID)

	got, err := env.service.Get(ctx, env.bob, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Title)
}

func TestUpdateAndDelete(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	list, err := env.service.Create(ctx, env.alice, CreateInput{Title: "Old"})
	require.NoError(t, err)

	_, err = env.service.Update(ctx, env.alice, list.ID, UpdateInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.service.Update(ctx, env.alice, list.ID, UpdateInput{Title: ptr("")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.service.Update(ctx, env.bob, list.ID, UpdateInput{Title: ptr("Mine now")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	env.clock.Advance(time.Hour)
	updated, err := env.service.Update(ctx, env.alice, list.ID, UpdateInput{Title: ptr("New"), IsPublic: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.True(t, updated.IsPublic)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	entry := env.addEntry(t, env.alice, "603", "The Matrix")
	_, err = env.service.AddItem(ctx, env.alice, list.ID, AddItemInput{LibraryEntryID: entry.ID})
	require.NoError(t, err)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.service.Delete(ctx, env.bob, list.ID)))
	require.NoError(t, env.service.Delete(ctx, env.alice, list.ID))

	_, err = env.service.Get(ctx, env.alice, list.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var items int
	require.NoError(t, env.tdb.Conn.QueryRow(`SELECT COUNT(*) FROM list_items`).Scan(&items))
	assert.Equal(t, 0, items)

	// The library entry itself survives.
	_, err = env.library.Get(ctx, env.alice, entry.ID)
	assert.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
