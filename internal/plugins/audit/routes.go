package audit

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up audit routes on the project-scoped group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/activity", h.Activity)
	g.GET("/day/:date/history", h.DayHistory)
}
