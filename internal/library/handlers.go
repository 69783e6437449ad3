package library

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/auth"
	"github.com/mediashelf/mediashelf/internal/media"
)

// Handlers provides HTTP handlers for library operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new library handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the library routes. The group must already
// require authentication.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Add)
	g.GET("/statuses", h.Statuses)
	g.GET("/item/:mediaType/:externalId", h.GetByExternal)
	g.GET("/stats/:userId", h.Stats)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Remove)
}

// List returns library entries with optional filtering. userId selects
// another user's library when that user is public.
// GET /api/v1/library?mediaType=book&status=reading&sort=rating
func (h *Handlers) List(c echo.Context) error {
	viewerID := auth.CurrentUserID(c)
	ownerID := viewerID
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperr.Validation("invalid userId")
		}
		ownerID = id
	}

	opts, err := parseListOptions(c)
	if err != nil {
		return err
	}

	entries, err := h.service.List(c.Request().Context(), viewerID, ownerID, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Add adds a catalog item to the caller's library.
// POST /api/v1/library
func (h *Handlers) Add(c echo.Context) error {
	var input AddInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	entry, err := h.service.Add(c.Request().Context(), auth.CurrentUserID(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// Statuses returns the status vocabulary of every media type.
// GET /api/v1/library/statuses
func (h *Handlers) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Statuses())
}

// GetByExternal returns the caller's entry for a catalog item.
// GET /api/v1/library/item/:mediaType/:externalId
func (h *Handlers) GetByExternal(c echo.Context) error {
	mediaType, err := media.ParseType(c.Param("mediaType"))
	if err != nil {
		return err
	}

	entry, err := h.service.GetByExternal(c.Request().Context(), auth.CurrentUserID(c), mediaType, c.Param("externalId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Stats returns library statistics for a user.
// GET /api/v1/library/stats/:userId
func (h *Handlers) Stats(c echo.Context) error {
	ownerID, err := parseID(c.Param("userId"))
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), auth.CurrentUserID(c), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Get returns a single entry.
// GET /api/v1/library/:id
func (h *Handlers) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	entry, err := h.service.Get(c.Request().Context(), auth.CurrentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Update applies a partial update.
// PATCH /api/v1/library/:id
func (h *Handlers) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	entry, err := h.service.Update(c.Request().Context(), auth.CurrentUserID(c), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Remove deletes an entry.
// DELETE /api/v1/library/:id
func (h *Handlers) Remove(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), auth.CurrentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseListOptions(c echo.Context) (ListOptions, error) {
	opts := ListOptions{
		MediaType: media.Type(c.QueryParam("mediaType")),
		Status:    c.QueryParam("status"),
		Sort:      c.QueryParam("sort"),
		Order:     c.QueryParam("order"),
	}

	if raw := c.QueryParam("favorite"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, apperr.Validation("favorite must be true or false")
		}
		opts.Favorite = &fav
	}

	for name, dst := range map[string]**float64{
		"minRating": &opts.MinRating,
		"maxRating": &opts.MaxRating,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, apperr.Validation("%s must be a number", name)
		}
		*dst = &v
	}

	for name, dst := range map[string]*int{
		"limit":  &opts.Limit,
		"offset": &opts.Offset,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return opts, apperr.Validation("%s must be a non-negative integer", name)
		}
		*dst = v
	}

	return opts, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}
