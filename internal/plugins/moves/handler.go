package moves

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
)

// Handler handles move requests. Handlers are thin: bind, call service,
// respond.
type Handler struct {
	service Service
}

// NewHandler creates a new moves handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Move handles the calendar page's drop (POST /projects/:id/calendar/move).
// The page is never patched in place: HTMX callers are told to reload so
// the backend's renumbering is what the admin sees.
func (h *Handler) Move(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	var in MoveInput
	if err := c.Bind(&in); err != nil {
		return apperror.NewBadRequest("invalid move request")
	}

	if _, err := h.service.Move(c.Request().Context(), pc, in); err != nil {
		return err
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	back := "/projects/" + url.PathEscape(pc.ProjectID()) + "/calendar?view=" + url.QueryEscape(string(pc.View))
	return c.Redirect(http.StatusSeeOther, back)
}

// APIMove is the JSON endpoint for scripts (POST /api/projects/:id/move-day).
// It returns the backend's move result unchanged.
func (h *Handler) APIMove(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	var req APIRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	if req.Mode != "" && req.Mode != ModeSwap {
		return apperror.NewBadRequest(msgUnsupportedMode)
	}

	res, err := h.service.Move(c.Request().Context(), pc, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
