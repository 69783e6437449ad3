package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:  "0123456789abcdef0123",
		TokenTTL:   time.Hour,
		CookieName: "authToken",
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(testConfig())
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(config.AuthConfig{})
	assert.Error(t, err)
}

func TestService_TokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.GenerateToken(42, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestService_TokensHaveUniqueIDs(t *testing.T) {
	svc := newTestService(t)

	a, _, err := svc.GenerateToken(1, "alice")
	require.NoError(t, err)
	b, _, err := svc.GenerateToken(1, "alice")
	require.NoError(t, err)

	ca, err := svc.ValidateToken(a)
	require.NoError(t, err)
	cb, err := svc.ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(t)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return issued })

	token, _, err := svc.GenerateToken(1, "alice")
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_RejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(config.AuthConfig{JWTSecret: "another-secret-value-000"})
	require.NoError(t, err)

	token, _, err := other.GenerateToken(1, "mallory")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestMiddleware_RequireAuth(t *testing.T) {
	svc := newTestService(t)
	mw := NewMiddleware(svc, testConfig())
	token, _, err := svc.GenerateToken(7, "bob")
	require.NoError(t, err)

	e := echo.New()
	var seen int64
	handler := mw.RequireAuth()(func(c echo.Context) error {
		seen = CurrentUserID(c)
		return c.NoContent(http.StatusNoContent)
	})

	t.Run("bearer", func(t *testing.T) {
		seen = 0
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, int64(7), seen)
	})

	t.Run("cookie", func(t *testing.T) {
		seen = 0
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "authToken", Value: token})
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, int64(7), seen)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := handler(e.NewContext(req, httptest.NewRecorder()))
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("invalid cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "authToken", Value: "garbage"})
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "authToken", cookies[0].Name)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].MaxAge < 0)
	})
}

func TestMiddleware_OptionalAuth(t *testing.T) {
	svc := newTestService(t)
	mw := NewMiddleware(svc, testConfig())

	e := echo.New()
	var seen int64 = -1
	handler := mw.OptionalAuth()(func(c echo.Context) error {
		seen = CurrentUserID(c)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	require.NoError(t, handler(e.NewContext(req, httptest.NewRecorder())))
	assert.Equal(t, int64(0), seen)
}
