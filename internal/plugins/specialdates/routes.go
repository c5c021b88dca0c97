package specialdates

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up special date routes on the project-scoped groups.
func RegisterRoutes(pages, api *echo.Group, h *Handler) {
	pages.GET("/special-dates", h.Index)
	pages.POST("/special-dates/:kind", h.Create)
	pages.POST("/special-dates/:kind/:sid", h.Update)
	pages.PUT("/special-dates/:kind/:sid", h.Update)
	pages.DELETE("/special-dates/:kind/:sid", h.Delete)
	pages.POST("/special-dates/:kind/:sid/delete", h.Delete)

	api.GET("/special-dates/:kind", h.APIList)
}
