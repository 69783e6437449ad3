package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
)

// UserKey is the echo context key holding the caller's *Claims.
const UserKey = "user"

// TokenValidator checks a raw token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Middleware authenticates requests from the session cookie or a bearer
// token.
type Middleware struct {
	validator    TokenValidator
	cookieName   string
	secureCookie bool
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(validator TokenValidator, cfg config.AuthConfig) *Middleware {
	name := cfg.CookieName
	if name == "" {
		name = "authToken"
	}
	return &Middleware{
		validator:    validator,
		cookieName:   name,
		secureCookie: cfg.SecureCookie,
	}
}

// RequireAuth rejects requests without a valid token. An invalid cookie is
// cleared so the browser stops sending it.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, fromCookie := m.extractToken(c)
			if token == "" {
				return apperr.New(apperr.KindUnauthorized, "missing authorization token")
			}

			claims, err := m.validator.ValidateToken(token)
			if err != nil {
				if fromCookie {
					m.ClearCookie(c)
				}
				return apperr.Wrap(apperr.KindUnauthorized, err, "invalid token")
			}

			c.Set(UserKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth attaches the caller's claims when a valid token is present
// and lets anonymous requests through.
func (m *Middleware) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, _ := m.extractToken(c); token != "" {
				if claims, err := m.validator.ValidateToken(token); err == nil {
					c.Set(UserKey, claims)
				}
			}
			return next(c)
		}
	}
}

// SetCookie stores the session token in an HttpOnly cookie.
func (m *Middleware) SetCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Middleware) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c echo.Context) *Claims {
	claims, ok := c.Get(UserKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUserID returns the authenticated caller's id, or 0 for anonymous
// requests.
func CurrentUserID(c echo.Context) int64 {
	if claims := CurrentUser(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// extractToken prefers the bearer header over the cookie.
func (m *Middleware) extractToken(c echo.Context) (token string, fromCookie bool) {
	if bearer := extractBearerToken(c); bearer != "" {
		return bearer, false
	}
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
