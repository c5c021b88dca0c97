package specialdates

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
)

// Handler handles HTTP requests for special dates.
type Handler struct {
	service Service
}

// NewHandler creates a new special dates handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Index renders every collection (GET /projects/:id/special-dates).
func (h *Handler) Index(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	return h.render(c, pc)
}

// Create adds a record (POST /projects/:id/special-dates/:kind).
func (h *Handler) Create(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Create(c.Request().Context(), pc, backend.Kind(c.Param("kind")), in); err != nil {
		return err
	}
	return h.done(c, pc)
}

// Update edits a record (POST or PUT /projects/:id/special-dates/:kind/:sid).
func (h *Handler) Update(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Update(c.Request().Context(), pc, backend.Kind(c.Param("kind")), c.Param("sid"), in); err != nil {
		return err
	}
	return h.done(c, pc)
}

// Delete removes a record (DELETE /projects/:id/special-dates/:kind/:sid,
// or POST .../delete for plain forms).
func (h *Handler) Delete(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), pc, backend.Kind(c.Param("kind")), c.Param("sid")); err != nil {
		return err
	}
	return h.done(c, pc)
}

// APIList returns one collection as JSON
// (GET /api/projects/:id/special-dates/:kind).
func (h *Handler) APIList(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), pc.ProjectID(), backend.Kind(c.Param("kind")))
	if err != nil {
		return err
	}
	if list == nil {
		list = []backend.SpecialDate{}
	}
	return c.JSON(http.StatusOK, list)
}

// done re-renders the panel for HTMX, or redirects plain forms.
func (h *Handler) done(c echo.Context, pc *projects.Context) error {
	if middleware.IsHTMX(c) {
		return h.render(c, pc)
	}
	return c.Redirect(http.StatusSeeOther, "/projects/"+url.PathEscape(pc.ProjectID())+"/special-dates")
}

func (h *Handler) render(c echo.Context, pc *projects.Context) error {
	groups, err := h.service.ListAll(c.Request().Context(), pc.ProjectID())
	if err != nil {
		return err
	}
	data := Page{ProjectID: pc.ProjectID(), Title: pc.Project.Title, Groups: groups, Types: Types}
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, layouts.Fragment("specialdates_panel", data))
	}
	return middleware.Render(c, http.StatusOK, layouts.Page("Special dates", "specialdates", data))
}

func bindInput(c echo.Context) (Input, error) {
	var in Input
	if err := c.Bind(&in); err != nil {
		return Input{}, apperror.NewBadRequest("invalid form")
	}
	return in, nil
}
