package projects

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
)

// Handler serves the project picker.
type Handler struct {
	api backend.API
}

// NewHandler creates a new projects handler.
func NewHandler(api backend.API) *Handler {
	return &Handler{api: api}
}

// IndexData is the view model for the project picker.
type IndexData struct {
	Projects []backend.Project
}

// Index lists projects (GET /). A single project skips the picker.
func (h *Handler) Index(c echo.Context) error {
	list, err := h.api.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	if len(list) == 1 {
		return c.Redirect(http.StatusSeeOther, "/projects/"+url.PathEscape(list[0].ID)+"/calendar")
	}

	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
	})
	return middleware.Render(c, http.StatusOK, layouts.Page("Projects", "index", IndexData{Projects: list}))
}

// Select handles the picker form (GET /select?project=ID).
func (h *Handler) Select(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("project"))
	if id == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, "/projects/"+url.PathEscape(id)+"/calendar")
}
