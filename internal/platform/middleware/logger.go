package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// Logger emits one structured line per request. When the request carries a
// tenant context the authenticated identity is included, so auth failures and
// tenant activity can be correlated without consulting the audit stream.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if tenant := auth.TenantFromContext(c.Request().Context()); tenant != nil {
				evt.Str("tenant_id", tenant.ID).Str("user_id", tenant.UserID)
			}

			evt.Msg("request")
			return err
		}
	}
}
