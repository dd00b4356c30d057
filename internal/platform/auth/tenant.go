package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

// ValidateTenantAccess returns middleware that rejects any request whose
// route parameter or body names a tenant other than the one in the tenant
// context. It must run after Context on every tenant-scoped route.
func ValidateTenantAccess(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant := TenantFromContext(c.Request().Context())
			if tenant == nil {
				return apperr.Forbidden("tenant context not found")
			}

			requested := c.Param("tenantId")
			if requested == "" {
				requested = peekBodyField(c, "tenantId")
			}

			if requested != "" && requested != tenant.ID {
				logger.Warn().
					Str("user_id", tenant.UserID).
					Str("tenant_id", tenant.ID).
					Str("requested_tenant_id", requested).
					Msg("cross-tenant access attempt")
				return apperr.Forbidden("cannot access resources from another tenant")
			}

			return next(c)
		}
	}
}
