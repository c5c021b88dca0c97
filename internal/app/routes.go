package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/audit"
	"github.com/keyxmakerx/shootcal/internal/plugins/calendar"
	"github.com/keyxmakerx/shootcal/internal/plugins/dayeditor"
	"github.com/keyxmakerx/shootcal/internal/plugins/moves"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
	"github.com/keyxmakerx/shootcal/internal/plugins/projects"
	"github.com/keyxmakerx/shootcal/internal/plugins/reference"
	"github.com/keyxmakerx/shootcal/internal/plugins/specialdates"
	"github.com/keyxmakerx/shootcal/internal/plugins/versions"
	"github.com/keyxmakerx/shootcal/internal/templates/layouts"
	"github.com/keyxmakerx/shootcal/internal/widgets/live"
)

// RegisterRoutes wires every plugin and registers its routes. This is the
// single place where services are constructed and routes aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config.Calendar

	// --- Shared services ---
	prefsService := preferences.NewService(preferences.NewRedisStore(a.Redis, cfg.PrefsTTL))
	auditService := audit.NewService(audit.NewRepository(a.DB))
	refCache := reference.NewCache(a.Backend, a.Redis, cfg.ReferenceCacheTTL)

	a.setupLayoutInjector(prefsService)

	// Health check: the process is only useful if both stores answer.
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
		}
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Project-independent routes ---
	projects.RegisterRoutes(e, projects.NewHandler(a.Backend))
	preferences.RegisterRoutes(e, preferences.NewHandler(prefsService))
	reference.RegisterRoutes(e, reference.NewHandler(refCache))
	live.RegisterRoutes(e, live.NewHandler(a.Hub, prefsService))

	// --- Project-scoped routes ---
	// Every handler below reads the selected project, prefs and view from
	// the projects.Context that RequireProject builds.
	requireProject := projects.RequireProject(a.Backend, prefsService)
	pages := e.Group("/projects/:id", requireProject)
	api := e.Group("/api/projects/:id", requireProject)

	calendar.RegisterRoutes(pages, calendar.NewHandler(
		calendar.NewService(a.Backend, refCache, a.Hub, auditService), prefsService))

	moves.RegisterRoutes(pages, api, moves.NewHandler(
		moves.NewService(a.Backend, moves.NewRedisLocker(a.Redis, cfg.MoveLockTTL), a.Hub, auditService, cfg.MovePayload)))

	versions.RegisterRoutes(pages, api, versions.NewHandler(
		versions.NewService(a.Backend, a.Hub, auditService)))

	specialdates.RegisterRoutes(pages, api, specialdates.NewHandler(
		specialdates.NewService(a.Backend, a.Hub, auditService)))

	dayeditor.RegisterRoutes(pages, dayeditor.NewHandler(
		dayeditor.NewService(a.Backend, refCache, a.Hub, auditService)))

	audit.RegisterRoutes(pages, audit.NewHandler(auditService))
}

// setupLayoutInjector copies chrome data into the render context. It lives
// here so the middleware and layouts packages never import plugins.
func (a *App) setupLayoutInjector(prefs preferences.Service) {
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)

		if pc := projects.GetContext(c); pc != nil {
			ctx = layouts.SetProjectID(ctx, pc.ProjectID())
			ctx = layouts.SetProjectTitle(ctx, pc.Project.Title)
			ctx = layouts.SetView(ctx, string(pc.View))
			return layouts.SetTheme(ctx, string(pc.Prefs.Theme.Normalize()))
		}
		p := prefs.Load(ctx, middleware.GetClientID(c))
		return layouts.SetTheme(ctx, string(p.Theme.Normalize()))
	}
}
