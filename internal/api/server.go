// Package api assembles the services into the HTTP server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/mediashelf/mediashelf/internal/api/middleware"
	"github.com/mediashelf/mediashelf/internal/api/ratelimit"
	"github.com/mediashelf/mediashelf/internal/auth"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/library"
	"github.com/mediashelf/mediashelf/internal/lists"
	"github.com/mediashelf/mediashelf/internal/metadata"
	"github.com/mediashelf/mediashelf/internal/users"
)

// Server handles HTTP requests for the mediashelf API.
type Server struct {
	echo      *echo.Echo
	db        *database.DB
	logger    zerolog.Logger
	cfg       *config.Config
	startedAt time.Time

	// Services
	usersService   *users.Service
	libraryService *library.Service
	listsService   *lists.Service
	catalogService *metadata.Service
	tokenService   *auth.Service
	authMiddleware *auth.Middleware
	loginLimiter   *ratelimit.AuthLimiter
}

// NewServer creates a new API server. sources are the catalog clients, one
// per upstream.
func NewServer(db *database.DB, sources []metadata.Source, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	tokens, err := auth.NewService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	s := &Server{
		echo:      e,
		db:        db,
		logger:    logger.With().Str("component", "api").Logger(),
		cfg:       cfg,
		startedAt: time.Now().UTC(),

		usersService:   users.NewService(db.Conn(), logger),
		libraryService: library.NewService(db.Conn(), cfg.Library, logger),
		listsService:   lists.NewService(db, logger),
		catalogService: metadata.NewService(sources, cfg.Metadata, logger),
		tokenService:   tokens,
		authMiddleware: auth.NewMiddleware(tokens, cfg.Auth),
		loginLimiter:   ratelimit.NewAuthLimiter(),
	}

	// Profiles show library stats and libraries honour profile privacy.
	s.libraryService.SetVisibility(s.usersService)
	s.usersService.SetStatsProvider(s.libraryService)

	e.HTTPErrorHandler = s.handleError

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	origins := s.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: len(s.cfg.Server.CORSOrigins) > 0,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))

	s.echo.Use(apimw.SecurityHeaders())
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	// Accounts and profiles carry their own auth requirements per route.
	usersHandlers := users.NewHandlers(s.usersService, s.tokenService, s.authMiddleware)
	usersHandlers.SetLoginGuard(s.loginLimiter)
	usersHandlers.RegisterRoutes(api)

	protected := api.Group("", s.authMiddleware.RequireAuth())

	metadata.NewHandlers(s.catalogService).RegisterRoutes(protected)
	library.NewHandlers(s.libraryService).RegisterRoutes(protected.Group("/library"))
	lists.NewHandlers(s.listsService).RegisterRoutes(protected.Group("/lists"))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	if err := s.db.Conn().PingContext(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check: database unreachable")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	schemaVersion, err := s.db.Version(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":       config.Version,
		"startTime":     s.startedAt.Format(time.RFC3339),
		"schemaVersion": schemaVersion,
		"catalogs":      s.catalogService.Status(),
		"offline":       s.cfg.Metadata.Offline,
	})
}
