package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/library"
	"github.com/mediashelf/mediashelf/internal/testutil"
)

func setupService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	return NewService(tdb.Conn, tdb.Logger), tdb
}

func TestRegister(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, PrivacyPrivate, user.ProfilePrivacy)

	_, err = svc.Register(ctx, RegisterInput{Username: "ALICE", Password: "secret1"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "al", Password: "secret1"}},
		{"long username", RegisterInput{Username: strings.Repeat("a", 33), Password: "secret1"}},
		{"bad characters", RegisterInput{Username: "al ice", Password: "secret1"}},
		{"short password", RegisterInput{Username: "alice", Password: "12345"}},
		{"long password", RegisterInput{Username: "alice", Password: strings.Repeat("p", 73)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "Alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, wrongPassword := svc.Authenticate(ctx, "alice", "secret2")
	_, unknownUser := svc.Authenticate(ctx, "nobody", "secret1")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(wrongPassword))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(unknownUser))
	assert.Equal(t, apperr.MessageOf(wrongPassword), apperr.MessageOf(unknownUser))
}

func TestCanView(t *testing.T) {
	svc, tdb := setupService(t)
	ctx := context.Background()

	private := tdb.CreateUser(t, "private", false)
	public := tdb.CreateUser(t, "public", true)

	tests := []struct {
		name   string
		viewer int64
		owner  int64
		want   bool
	}{
		{"self", private, private, true},
		{"other private", public, private, false},
		{"other public", private, public, true},
		{"anonymous public", 0, public, true},
		{"anonymous private", 0, private, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanView(ctx, tt.viewer, tt.owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.CanView(ctx, private, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestProfile(t *testing.T) {
	svc, tdb := setupService(t)
	ctx := context.Background()

	lib := library.NewService(tdb.Conn, config.LibraryConfig{RatingMax: 20, RatingPrecision: 2}, tdb.Logger)
	lib.SetVisibility(svc)
	svc.SetStatsProvider(lib)

	alice := tdb.CreateUser(t, "alice", false)
	bob := tdb.CreateUser(t, "bob", true)

	_, err := lib.Add(ctx, bob, library.AddInput{MediaType: "movie", ExternalID: "603", Title: "The Matrix", Status: "completed"})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.User.Username)
	require.NotNil(t, profile.Stats)
	assert.Equal(t, 1, profile.Stats.CompletedCount)

	_, err = svc.Profile(ctx, bob, alice)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	own, err := svc.Profile(ctx, alice, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, own.Stats.Total)

	_, err = svc.Profile(ctx, alice, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The library honours the same privacy setting.
	_, err = lib.List(ctx, bob, alice, library.ListOptions{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	entries, err := lib.List(ctx, alice, bob, library.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateProfile(t *testing.T) {
	svc, tdb := setupService(t)
	ctx := context.Background()
	alice := tdb.CreateUser(t, "alice", false)

	_, err := svc.UpdateProfile(ctx, alice, UpdateProfileInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bad := "friends"
	_, err = svc.UpdateProfile(ctx, alice, UpdateProfileInput{ProfilePrivacy: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	public := "Public"
	image := "https://example.com/me.png"
	user, err := svc.UpdateProfile(ctx, alice, UpdateProfileInput{ProfilePrivacy: &public, ProfileImageURL: &image})
	require.NoError(t, err)
	assert.Equal(t, PrivacyPublic, user.ProfilePrivacy)

	stored, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	assert.True(t, stored.IsPublic())
	assert.Equal(t, image, stored.ProfileImageURL)
}
