package preferences

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
)

// TabHeader carries the id of the browser tab that issued a request.
const TabHeader = "X-Tab-ID"

// OriginContext returns the request context tagged with the issuing tab, so
// prefs written during the request are published with that origin.
func OriginContext(c echo.Context) context.Context {
	return WithOrigin(c.Request().Context(), c.Request().Header.Get(TabHeader))
}

// Handler serves preference endpoints that are not tied to a project.
type Handler struct {
	service Service
}

// NewHandler creates a new preferences handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ToggleTheme flips the theme (POST /prefs/theme). HTMX callers get a full
// refresh so the new stylesheet applies everywhere; plain forms are sent
// back where they came from.
func (h *Handler) ToggleTheme(c echo.Context) error {
	if _, err := h.service.ToggleTheme(OriginContext(c), middleware.GetClientID(c)); err != nil {
		return err
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, localReferer(c.Request()))
}

// Get returns the client's prefs as JSON (GET /api/prefs).
func (h *Handler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Load(c.Request().Context(), middleware.GetClientID(c)))
}

// localReferer returns the Referer's path and query when it points at this
// host, and "/" otherwise.
func localReferer(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Opaque != "" || u.User != nil {
		return "/"
	}
	if u.Host != "" && u.Host != r.Host {
		return "/"
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "/"
	}

	path := u.EscapedPath()
	// "//evil" and "/\evil" are treated as hosts by browsers.
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
