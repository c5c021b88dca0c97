package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// clientIDCookie identifies a browser so its filter preferences and theme
// survive reloads without any login on this server.
const clientIDCookie = "shootcal_client"

// clientIDKey is the Echo context key holding the resolved client id.
const clientIDKey = "client_id"

// ClientID returns middleware that ensures every browser carries a stable
// random id cookie. Invalid cookie values are replaced.
func ClientID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := ""
			if cookie, err := req.Cookie(clientIDCookie); err == nil {
				if parsed, perr := uuid.Parse(cookie.Value); perr == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     clientIDCookie,
					Value:    id,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					HttpOnly: true,
					Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(clientIDKey, id)
			return next(c)
		}
	}
}

// GetClientID returns the id set by ClientID, or "" if the middleware did
// not run.
func GetClientID(c echo.Context) string {
	id, _ := c.Get(clientIDKey).(string)
	return id
}
