package calendar

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up calendar routes on the project-scoped group. The
// reset route is registered before the :filter route so it is not taken
// as a filter id.
func RegisterRoutes(pages *echo.Group, h *Handler) {
	pages.GET("/calendar", h.Show)
	pages.GET("/calendar/print", h.Print)
	pages.POST("/calendar/generate", h.Generate)

	pages.POST("/filters/reset", h.ResetFilters)
	pages.POST("/filters/:filter", h.ToggleFilter)
}
