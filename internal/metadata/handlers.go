package metadata

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/media"
)

// Handlers provides HTTP handlers for catalog operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new catalog handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/details/:mediaType/:externalId", h.Details)
	g.GET("/discover", h.Popular)
	g.GET("/discover/all", h.Discover)
	g.GET("/catalog/status", h.Status)
}

// SearchResponse wraps search results.
type SearchResponse struct {
	MediaType media.Type     `json:"mediaType"`
	Query     string         `json:"query"`
	Results   []media.Record `json:"results"`
}

// Search searches one catalog.
// GET /api/v1/search?type=movie&query=...
func (h *Handlers) Search(c echo.Context) error {
	mediaType, err := media.ParseType(c.QueryParam("type"))
	if err != nil {
		return err
	}
	query := c.QueryParam("query")
	if query == "" {
		query = c.QueryParam("q")
	}

	results, err := h.service.Search(c.Request().Context(), mediaType, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SearchResponse{
		MediaType: mediaType,
		Query:     strings.TrimSpace(query),
		Results:   results,
	})
}

// Details returns the full record for one catalog item.
// GET /api/v1/details/:mediaType/:externalId
func (h *Handlers) Details(c echo.Context) error {
	mediaType, err := media.ParseType(c.Param("mediaType"))
	if err != nil {
		return err
	}

	record, err := h.service.Details(c.Request().Context(), mediaType, c.Param("externalId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// Popular returns the popular feed for one media type.
// GET /api/v1/discover?type=game&limit=12
func (h *Handlers) Popular(c echo.Context) error {
	mediaType, err := media.ParseType(c.QueryParam("type"))
	if err != nil {
		return err
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	results, err := h.service.Popular(c.Request().Context(), mediaType, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

// Discover returns the popular feed for every media type.
// GET /api/v1/discover/all?limit=12
func (h *Handlers) Discover(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.Discover(c.Request().Context(), nil, limit))
}

// Status reports which catalogs are configured.
// GET /api/v1/catalog/status
func (h *Handlers) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Status())
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 50 {
		return 0, apperr.Validation("limit must be between 1 and 50")
	}
	return limit, nil
}
