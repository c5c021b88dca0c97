package audit

import (
	"context"

	"github.com/labstack/echo/v4"
)

type remoteIPKey struct{}

// WithRemoteIP stores the caller's IP for entries recorded later in the
// request.
func WithRemoteIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, remoteIPKey{}, ip)
}

func remoteIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(remoteIPKey{}).(string)
	return ip
}

// CaptureRemoteIP copies echo's resolved client IP into the request
// context so services can attribute entries without seeing echo types.
func CaptureRemoteIP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(WithRemoteIP(req.Context(), c.RealIP())))
			return next(c)
		}
	}
}
