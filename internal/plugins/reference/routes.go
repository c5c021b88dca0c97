package reference

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the reference data routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/locations", h.Locations)
	e.GET("/api/areas/:id", h.Area)
	e.GET("/api/departments", h.Departments)
	e.POST("/api/reference/refresh", h.Refresh)
}
