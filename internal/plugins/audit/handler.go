package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
)

// Handler handles HTTP requests for audit log operations. Handlers are thin:
// bind request, call service, render response.
type Handler struct {
	service Service
}

// NewHandler creates a new audit handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Activity renders the project activity page (GET /projects/:id/activity).
func (h *Handler) Activity(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	ctx := c.Request().Context()
	entries, total, err := h.service.Activity(ctx, pc.ProjectID(), page)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(ctx, pc.ProjectID())
	if err != nil {
		return err
	}

	data := ActivityPage{
		ProjectID: pc.ProjectID(),
		Title:     pc.Project.Title,
		Entries:   entries,
		Stats:     stats,
		Page:      page,
		PerPage:   perPage,
		Total:     total,
	}
	return middleware.Render(c, http.StatusOK, layouts.Page("Activity", "activity", data))
}

// DayHistory returns JSON history for one date
// (GET /projects/:id/day/:date/history).
func (h *Handler) DayHistory(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	entries, err := h.service.TargetHistory(c.Request().Context(), pc.ProjectID(), c.Param("date"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
