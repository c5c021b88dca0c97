package live

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the refresh socket. It is not behind
// RequireProject: the socket only carries signals, never project data.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/projects/:id/live", h.Socket)
}
