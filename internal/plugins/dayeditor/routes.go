package dayeditor

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up day editor routes on the project-scoped group.
func RegisterRoutes(pages *echo.Group, h *Handler) {
	pages.GET("/day/:date", h.Edit)
	pages.POST("/day/:date", h.Save)
}
