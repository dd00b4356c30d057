package middleware

import (
	"fmt"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

// Recovery converts a handler panic into a classified 500. The panic value
// rides along as the error cause, which the error handler exposes outside
// production and suppresses in it.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)

					rid, _ := c.Get("request_id").(string)
					logger.Error().
						Str("request_id", rid).
						Str("method", c.Request().Method).
						Str("path", c.Request().URL.Path).
						Str("stack", string(stack[:n])).
						Msgf("panic recovered: %v", r)

					err = apperr.Internal("internal server error", fmt.Errorf("panic: %v", r))
				}
			}()
			return next(c)
		}
	}
}
