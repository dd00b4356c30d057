package auth

import "context"

type contextKey string

const tenantKey contextKey = "tenant"

// Tenant is the per-request context attached after access-token verification.
// It is decoded entirely from the token claims and never persisted.
type Tenant struct {
	ID          string
	UserID      string
	Roles       []string
	Permissions []string
}

// HasRole reports whether the tenant context carries the given role.
func (t *Tenant) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the tenant context carries the given permission.
func (t *Tenant) HasPermission(perm string) bool {
	for _, p := range t.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// WithTenant returns a context carrying the tenant context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// TenantFromContext retrieves the tenant context, or nil if the request did
// not pass through the tenant context middleware.
func TenantFromContext(ctx context.Context) *Tenant {
	t, _ := ctx.Value(tenantKey).(*Tenant)
	return t
}
