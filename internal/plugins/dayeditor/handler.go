package dayeditor

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
)

// Handler serves the day editor.
type Handler struct {
	service Service
}

// NewHandler creates a new day editor handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Edit renders the form (GET /projects/:id/day/:date).
func (h *Handler) Edit(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	page, err := h.service.Load(c.Request().Context(), pc, c.Param("date"))
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, layouts.Page("Edit "+page.Day.Date, "dayeditor", page))
}

// Save handles the form (POST /projects/:id/day/:date) and returns to the
// calendar.
func (h *Handler) Save(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	var f Form
	if err := c.Bind(&f); err != nil {
		return apperror.NewBadRequest("invalid day form")
	}
	if _, err := h.service.Save(c.Request().Context(), pc, c.Param("date"), f); err != nil {
		return err
	}

	back := "/projects/" + url.PathEscape(pc.ProjectID()) + "/calendar"
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", back)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, back)
}
