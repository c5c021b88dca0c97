package versions

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

// Handler handles HTTP requests for versions.
type Handler struct {
	service Service
}

// NewHandler creates a new versions handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Index renders the versions page (GET /projects/:id/versions).
func (h *Handler) Index(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	list, err := h.service.List(ctx, pc.ProjectID())
	if err != nil {
		return err
	}
	ws, err := h.service.Workspace(ctx, pc.ProjectID())
	if err != nil {
		return err
	}
	return h.render(c, pc, list, ws, nil)
}

// Create handles the create form (POST /projects/:id/versions).
func (h *Handler) Create(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperror.NewBadRequest("invalid version form")
	}

	list, err := h.service.Create(c.Request().Context(), pc, in)
	if err != nil {
		return err
	}
	if !middleware.IsHTMX(c) {
		return c.Redirect(http.StatusSeeOther, versionsURL(pc))
	}
	return h.render(c, pc, list, nil, nil)
}

// Publish shares a version (POST /projects/:id/versions/:vid/publish). The
// response shows the access code and share link.
func (h *Handler) Publish(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	access, list, err := h.service.Publish(c.Request().Context(), pc, c.Param("vid"))
	if err != nil {
		return err
	}
	return h.render(c, pc, list, nil, access)
}

// Migrate moves the project onto versioning (POST /projects/:id/migrate).
func (h *Handler) Migrate(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	if err := h.service.MigrateToVersioned(c.Request().Context(), pc); err != nil {
		return err
	}
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", versionsURL(pc))
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, versionsURL(pc))
}

// APIList returns the sorted list as JSON (GET /api/projects/:id/versions).
func (h *Handler) APIList(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), pc.ProjectID())
	if err != nil {
		return err
	}
	if list == nil {
		list = []backend.Version{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) render(c echo.Context, pc *projects.Context, list []backend.Version, ws *backend.Workspace, access *backend.AccessInfo) error {
	data := Page{
		ProjectID:  pc.ProjectID(),
		Title:      pc.Project.Title,
		Versions:   list,
		NextNumber: NextVersionNumber(list),
		Workspace:  ws,
		Access:     access,
	}
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, layouts.Fragment("versions_panel", data))
	}
	return middleware.Render(c, http.StatusOK, layouts.Page("Versions", "versions", data))
}

func versionsURL(pc *projects.Context) string {
	return "/projects/" + url.PathEscape(pc.ProjectID()) + "/versions"
}
