package versions

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
)

// RegisterRoutes sets up version routes on the project-scoped groups.
// Publishing is rate limited because each call mints a share link.
func RegisterRoutes(pages, api *echo.Group, h *Handler) {
	pages.GET("/versions", h.Index)
	pages.POST("/versions", h.Create)
	pages.POST("/versions/:vid/publish", h.Publish, middleware.RateLimit(10, time.Minute))
	pages.POST("/migrate", h.Migrate)

	api.GET("/versions", h.APIList)
}
