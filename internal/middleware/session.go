package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// ForwardSession copies the browser's backend session cookie and a request
// id into the request context. The backend client reads them back so
// upstream calls act with the admin's own credentials.
func ForwardSession(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			sess := backend.Session{RequestID: requestID}
			if cookie, err := req.Cookie(cookieName); err == nil {
				sess.Cookie = cookie.Value
			}

			c.SetRequest(req.WithContext(backend.WithSession(req.Context(), sess)))
			return next(c)
		}
	}
}
