package projects

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the project picker routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.GET("/select", h.Select)
}
