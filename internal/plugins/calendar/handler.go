package calendar

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
)

// Handler serves the calendar views and filter toolbar.
type Handler struct {
	service Service
	prefs   preferences.Service
}

// NewHandler creates a new calendar handler.
func NewHandler(service Service, prefs preferences.Service) *Handler {
	return &Handler{service: service, prefs: prefs}
}

// Show renders the calendar (GET /projects/:id/calendar). HTMX requests
// from the toolbar get only the calendar body.
func (h *Handler) Show(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	return h.render(c, pc)
}

// Print renders the printable layout (GET /projects/:id/calendar/print).
func (h *Handler) Print(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	page, err := h.service.Page(c.Request().Context(), pc, bindQuery(c), true)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, layouts.Print(pc.Project.Title, "print", page))
}

// Generate rebuilds the calendar (POST /projects/:id/calendar/generate).
func (h *Handler) Generate(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Generate(c.Request().Context(), pc); err != nil {
		return err
	}
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, calendarURL(pc, ""))
}

// ToggleFilter saves one row-type or column toggle
// (POST /projects/:id/filters/:filter) and re-renders with the new state.
func (h *Handler) ToggleFilter(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	key, ok := filters.PrefKey(c.Param("filter"))
	if !ok {
		return apperror.NewBadRequest("unknown filter")
	}
	hidden, err := strconv.ParseBool(c.FormValue("hidden"))
	if err != nil {
		return apperror.NewBadRequest("hidden must be true or false")
	}

	next, err := h.prefs.SetHidden(preferences.OriginContext(c), pc.ClientID, key, hidden)
	if err != nil {
		return err
	}
	pc.Prefs = next

	if !middleware.IsHTMX(c) {
		return c.Redirect(http.StatusSeeOther, calendarURL(pc, encodeQuery(bindQuery(c))))
	}
	return h.render(c, pc)
}

// ResetFilters clears every toggle along with the search and location
// filters (POST /projects/:id/filters/reset).
func (h *Handler) ResetFilters(c echo.Context) error {
	pc, err := projects.MustContext(c)
	if err != nil {
		return err
	}

	next, err := h.prefs.Reset(preferences.OriginContext(c), pc.ClientID)
	if err != nil {
		return err
	}
	pc.Prefs = next

	// The search box lives outside the swapped fragment, so HTMX callers
	// reload the whole page to clear it.
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", calendarURL(pc, ""))
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, calendarURL(pc, ""))
}

func (h *Handler) render(c echo.Context, pc *projects.Context) error {
	page, err := h.service.Page(c.Request().Context(), pc, bindQuery(c), false)
	if err != nil {
		return err
	}
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, layouts.Fragment("calendar_body", page))
	}
	return middleware.Render(c, http.StatusOK, layouts.Page(pc.Project.Title, "calendar", page))
}

// bindQuery reads the transient filters from the query string or form
// body. Blank entries are dropped.
func bindQuery(c echo.Context) Query {
	params, err := c.FormParams()
	if err != nil {
		params = c.QueryParams()
	}
	return Query{
		Search:    strings.TrimSpace(params.Get("q")),
		Locations: nonEmpty(params["loc"]),
		Areas:     nonEmpty(params["area"]),
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func calendarURL(pc *projects.Context, query string) string {
	u := "/projects/" + url.PathEscape(pc.ProjectID()) + "/calendar?view=" + url.QueryEscape(string(pc.View))
	if query != "" {
		u += "&" + query
	}
	return u
}
