package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// AccessTokenHeader is the fallback header checked when no Authorization
// bearer token is present.
const AccessTokenHeader = "X-Access-Token"

// Context returns middleware that extracts and verifies an access token and
// attaches the decoded tenant context to the request. The token is looked up
// in order of precedence: Authorization bearer header, X-Access-Token header,
// access_token query parameter, access_token body field. First present wins.
//
// The middleware never consults the credential store: a verified access token
// is trusted as-is, so revoked users stay valid for up to one access TTL.
func Context(codec *Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return apperr.Unauthorized("missing authorization token")
			}

			claims, err := codec.VerifyAccess(token)
			if err != nil {
				return apperr.Unauthorized("invalid or expired token")
			}

			tenant := &Tenant{
				ID:          claims.TenantID,
				UserID:      claims.Subject,
				Roles:       claims.Roles,
				Permissions: claims.Permissions,
			}
			c.SetRequest(c.Request().WithContext(WithTenant(c.Request().Context(), tenant)))
			c.Set("tenant_id", tenant.ID)

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if token := c.Request().Header.Get(AccessTokenHeader); token != "" {
		return token
	}
	if token := c.QueryParam("access_token"); token != "" {
		return token
	}
	return peekBodyField(c, "access_token")
}
