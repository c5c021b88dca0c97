package projects

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/apperror"
	"github.com/keyxmakerx/shootcal/internal/backend"
	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/filters"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
)

// contextKeyProject is the Echo context key for the project context.
const contextKeyProject = "project_context"

// RequireProject returns middleware that resolves the project from the :id
// URL parameter, loads the client's prefs and reads the view mode from
// ?view=. The resolved Context is stored on the Echo context.
//
// Must be applied AFTER middleware.ClientID and middleware.ForwardSession.
func RequireProject(api backend.API, prefs preferences.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			projectID := c.Param("id")
			if projectID == "" {
				return apperror.NewBadRequest("project ID is required")
			}

			ctx := c.Request().Context()
			project, err := api.GetProject(ctx, projectID)
			if err != nil {
				return err
			}

			clientID := middleware.GetClientID(c)
			c.Set(contextKeyProject, &Context{
				Project:  project,
				ClientID: clientID,
				Prefs:    prefs.Load(ctx, clientID),
				View:     filters.ParseView(c.QueryParam("view")),
			})
			return next(c)
		}
	}
}

// GetContext retrieves the project context from the Echo context.
// Returns nil if RequireProject was not applied.
func GetContext(c echo.Context) *Context {
	pc, ok := c.Get(contextKeyProject).(*Context)
	if !ok {
		return nil
	}
	return pc
}

// MustContext is GetContext for handlers that cannot run without one.
func MustContext(c echo.Context) (*Context, error) {
	pc := GetContext(c)
	if pc == nil {
		return nil, apperror.NewInternal(fmt.Errorf("handler used without RequireProject"))
	}
	return pc, nil
}
