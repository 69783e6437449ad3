package users

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/auth"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned after register and login. The token is also
// set as a cookie.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// LoginGuard throttles sign-in attempts and locks accounts after repeated
// wrong passwords.
type LoginGuard interface {
	Middleware() echo.MiddlewareFunc
	LockoutRemaining(username string) time.Duration
	RecordFailedAttempt(username string)
	RecordSuccessfulLogin(username string)
}

// Handlers provides HTTP handlers for accounts and profiles.
type Handlers struct {
	service    *Service
	tokens     *auth.Service
	middleware *auth.Middleware
	guard      LoginGuard
}

// NewHandlers creates new account handlers.
func NewHandlers(service *Service, tokens *auth.Service, middleware *auth.Middleware) *Handlers {
	return &Handlers{
		service:    service,
		tokens:     tokens,
		middleware: middleware,
	}
}

// SetLoginGuard enables sign-in throttling. Call before RegisterRoutes.
func (h *Handlers) SetLoginGuard(guard LoginGuard) {
	h.guard = guard
}

// RegisterRoutes registers the /auth and /users routes on the API group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	var throttle []echo.MiddlewareFunc
	if h.guard != nil {
		throttle = append(throttle, h.guard.Middleware())
	}

	authGroup := g.Group("/auth")
	authGroup.POST("/register", h.Register, throttle...)
	authGroup.POST("/login", h.Login, throttle...)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me, h.middleware.RequireAuth())

	usersGroup := g.Group("/users")
	usersGroup.PATCH("/me", h.UpdateProfile, h.middleware.RequireAuth())
	usersGroup.GET("/:id", h.Profile, h.middleware.OptionalAuth())
}

// Register creates an account and signs it in.
// POST /api/v1/auth/register
func (h *Handlers) Register(c echo.Context) error {
	var input RegisterInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, err := h.service.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return h.startSession(c, http.StatusCreated, user)
}

// Login signs a user in.
// POST /api/v1/auth/login
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return apperr.Validation("username and password are required")
	}

	if h.guard != nil {
		if remaining := h.guard.LockoutRemaining(req.Username); remaining > 0 {
			minutes := int(remaining.Minutes()) + 1
			return echo.NewHTTPError(http.StatusTooManyRequests,
				fmt.Sprintf("account temporarily locked, try again in %d minutes", minutes))
		}
	}

	user, err := h.service.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if h.guard != nil && apperr.KindOf(err) == apperr.KindUnauthorized {
			h.guard.RecordFailedAttempt(req.Username)
		}
		return err
	}
	if h.guard != nil {
		h.guard.RecordSuccessfulLogin(req.Username)
	}
	return h.startSession(c, http.StatusOK, user)
}

// Logout clears the session cookie.
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c echo.Context) error {
	h.middleware.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me returns the signed-in user.
// GET /api/v1/auth/me
func (h *Handlers) Me(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), auth.CurrentUserID(c))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			// The account was removed after the token was issued.
			h.middleware.ClearCookie(c)
			return apperr.New(apperr.KindUnauthorized, "account no longer exists")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Profile returns a user's profile and library summary.
// GET /api/v1/users/:id
func (h *Handlers) Profile(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.Validation("invalid user id")
	}

	profile, err := h.service.Profile(c.Request().Context(), auth.CurrentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile changes the caller's privacy or image.
// PATCH /api/v1/users/me
func (h *Handlers) UpdateProfile(c echo.Context) error {
	var input UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), auth.CurrentUserID(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handlers) startSession(c echo.Context, status int, user *User) error {
	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return err
	}
	h.middleware.SetCookie(c, token, expiresAt)
	return c.JSON(status, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
