package preferences

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the project-independent preference routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/prefs/theme", h.ToggleTheme)
	e.GET("/api/prefs", h.Get)
}
