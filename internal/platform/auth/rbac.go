package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// RequirePermission returns middleware that denies the request unless the
// tenant context carries the required permission.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant := TenantFromContext(c.Request().Context())
			if tenant == nil {
				return apperr.Forbidden("tenant context not found")
			}
			if !tenant.HasPermission(permission) {
				return apperr.Forbidden("missing permission: " + permission)
			}
			return next(c)
		}
	}
}

// RequireRole returns middleware that denies the request unless the tenant
// context carries at least one of the allowed roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant := TenantFromContext(c.Request().Context())
			if tenant == nil {
				return apperr.Forbidden("tenant context not found")
			}
			for _, role := range roles {
				if tenant.HasRole(role) {
					return next(c)
				}
			}
			return apperr.Forbidden("requires one of these roles: " + strings.Join(roles, ", "))
		}
	}
}
