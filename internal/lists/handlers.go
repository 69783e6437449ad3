package lists

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/auth"
)

// Handlers provides HTTP handlers for list operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new list handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the list routes. The group must already
// require authentication.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/items", h.AddItem)
	g.PATCH("/:id/items/:itemId", h.UpdateItem)
	g.DELETE("/:id/items/:itemId", h.RemoveItem)
}

// List returns a user's lists; the caller's own when userId is absent.
// GET /api/v1/lists?userId=2
func (h *Handlers) List(c echo.Context) error {
	viewerID := auth.CurrentUserID(c)
	ownerID := viewerID
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		ownerID = id
	}

	lists, err := h.service.ListForUser(c.Request().Context(), viewerID, ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lists)
}

// Create creates a list.
// POST /api/v1/lists
func (h *Handlers) Create(c echo.Context) error {
	var input CreateInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	list, err := h.service.Create(c.Request().Context(), auth.CurrentUserID(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, list)
}

// Get returns a list with its items.
// GET /api/v1/lists/:id
func (h *Handlers) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	list, err := h.service.Get(c.Request().Context(), auth.CurrentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Update changes list details.
// PATCH /api/v1/lists/:id
func (h *Handlers) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	list, err := h.service.Update(c.Request().Context(), auth.CurrentUserID(c), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Delete removes a list.
// DELETE /api/v1/lists/:id
func (h *Handlers) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), auth.CurrentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddItem puts a library entry on a list.
// POST /api/v1/lists/:id/items
func (h *Handlers) AddItem(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}

	var input AddItemInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	item, err := h.service.AddItem(c.Request().Context(), auth.CurrentUserID(c), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem changes an item's comment.
// PATCH /api/v1/lists/:id/items/:itemId
func (h *Handlers) UpdateItem(c echo.Context) error {
	id, itemID, err := parseItemPath(c)
	if err != nil {
		return err
	}

	var input UpdateItemInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	item, err := h.service.UpdateItem(c.Request().Context(), auth.CurrentUserID(c), id, itemID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// RemoveItem takes an item off a list.
// DELETE /api/v1/lists/:id/items/:itemId
func (h *Handlers) RemoveItem(c echo.Context) error {
	id, itemID, err := parseItemPath(c)
	if err != nil {
		return err
	}

	if err := h.service.RemoveItem(c.Request().Context(), auth.CurrentUserID(c), id, itemID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseItemPath(c echo.Context) (int64, int64, error) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return 0, 0, err
	}
	itemID, err := parseID(c.Param("itemId"))
	if err != nil {
		return 0, 0, err
	}
	return id, itemID, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}
