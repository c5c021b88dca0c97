package moves

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
)

// RegisterRoutes sets up move routes on the project-scoped page and API
// groups. Both share one rate limiter so a script cannot dodge it by
// switching endpoints.
func RegisterRoutes(pages, api *echo.Group, h *Handler) {
	limit := middleware.RateLimit(20, time.Minute)

	pages.POST("/calendar/move", h.Move, limit)
	api.POST("/move-day", h.APIMove, limit)
}
