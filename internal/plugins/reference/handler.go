package reference

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// Handler exposes cached reference data as JSON for scripts and the
// day editor's pickers.
type Handler struct {
	cache *Cache
}

// NewHandler creates a new reference handler.
func NewHandler(cache *Cache) *Handler {
	return &Handler{cache: cache}
}

// Locations handles GET /api/locations.
func (h *Handler) Locations(c echo.Context) error {
	locs, err := h.cache.Locations(c.Request().Context())
	if err != nil {
		return err
	}
	if locs == nil {
		locs = []backend.Location{}
	}
	return c.JSON(http.StatusOK, locs)
}

// Area handles GET /api/areas/:id.
func (h *Handler) Area(c echo.Context) error {
	area, err := h.cache.Area(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, area)
}

// Departments handles GET /api/departments.
func (h *Handler) Departments(c echo.Context) error {
	deps, err := h.cache.Departments(c.Request().Context())
	if err != nil {
		return err
	}
	if deps == nil {
		deps = []backend.Department{}
	}
	return c.JSON(http.StatusOK, deps)
}

// Refresh drops cached reference data (POST /api/reference/refresh), for
// after locations or departments are edited in the backend.
func (h *Handler) Refresh(c echo.Context) error {
	h.cache.Evict(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
