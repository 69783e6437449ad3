package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediashelf/mediashelf/internal/api/ratelimit"
	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/auth"
	"github.com/mediashelf/mediashelf/internal/config"
)

func setupHandlers(t *testing.T) (*echo.Echo, *Handlers) {
	t.Helper()
	svc, _ := setupService(t)
	cfg := config.AuthConfig{JWTSecret: "test-secret-0123456789", TokenTTL: time.Hour, CookieName: "authToken"}
	tokens, err := auth.NewService(cfg)
	require.NoError(t, err)
	return echo.New(), NewHandlers(svc, tokens, auth.NewMiddleware(tokens, cfg))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandlers_RegisterAndLogin(t *testing.T) {
	e, h := setupHandlers(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"username":"alice","password":"secret1"}`), rec)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var session SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice", session.User.Username)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authToken", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"secret1"}`), rec)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c = e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"nope"}`), httptest.NewRecorder())
	assert.Equal(t, http.StatusUnauthorized, apperr.HTTPStatus(apperr.KindOf(h.Login(c))))

	c = e.NewContext(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"username":"alice"}`), httptest.NewRecorder())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(h.Login(c)))
}

func TestHandlers_MeThroughRoutes(t *testing.T) {
	e, h := setupHandlers(t)
	h.RegisterRoutes(e.Group("/api/v1"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"username":"bob","password":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, session.User.ID, me.ID)

	// Profiles are private by default, even to anonymous callers.
	rec = httptest.NewRecorder()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.NoContent(apperr.HTTPStatus(apperr.KindOf(err)))
	}
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlers_Logout(t *testing.T) {
	e, h := setupHandlers(t)

	rec := httptest.NewRecorder()
	require.NoError(t, h.Logout(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHandlers_LoginLockout(t *testing.T) {
	e, h := setupHandlers(t)
	h.SetLoginGuard(ratelimit.NewAuthLimiter())

	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(jsonRequest(http.MethodPost, "/", `{"username":"dave","password":"secret1"}`), rec)))

	for i := 0; i < ratelimit.DefaultMaxFailedAttempts; i++ {
		c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"username":"dave","password":"wrong-one"}`), httptest.NewRecorder())
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(h.Login(c)))
	}

	// Even the right password is refused while locked.
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"username":"dave","password":"secret1"}`), httptest.NewRecorder())
	err := h.Login(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
}
