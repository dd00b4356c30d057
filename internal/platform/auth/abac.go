package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// AttributeCheck evaluates an attribute-based access decision for a request.
// It may perform additional lookups (resource ownership, record state) and is
// the extension point for per-resource authorization.
type AttributeCheck func(c echo.Context) (bool, error)

// RequireAttribute returns middleware that denies the request unless the
// injected predicate returns true. Predicate errors propagate unchanged so a
// store failure surfaces as a 500 rather than a misleading 403.
func RequireAttribute(check AttributeCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := check(c)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Forbidden("access denied based on resource attributes")
			}
			return next(c)
		}
	}
}
