package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runWithTenant(mw echo.MiddlewareFunc, tenant *Tenant) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if tenant != nil {
		c.SetRequest(req.WithContext(WithTenant(req.Context(), tenant)))
	}
	return mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRequirePermissionGranted(t *testing.T) {
	tenant := &Tenant{ID: "t1", Permissions: []string{"PATIENT:READ", "PATIENT:CREATE"}}
	if err := runWithTenant(RequirePermission("PATIENT:READ"), tenant); err != nil {
		t.Errorf("granted permission rejected: %v", err)
	}
}

func TestRequirePermissionDenied(t *testing.T) {
	tenant := &Tenant{ID: "t1", Permissions: []string{"PATIENT:READ"}}
	err := runWithTenant(RequirePermission("PATIENT:DELETE"), tenant)
	assertStatus(t, err, http.StatusForbidden)
}

func TestRequirePermissionNoTenantContext(t *testing.T) {
	err := runWithTenant(RequirePermission("PATIENT:READ"), nil)
	assertStatus(t, err, http.StatusForbidden)
}

func TestRequirePermissionNoAdminBypass(t *testing.T) {
	// Roles alone grant nothing: only the embedded permission list counts.
	tenant := &Tenant{ID: "t1", Roles: []string{RoleSuperAdmin}}
	err := runWithTenant(RequirePermission("PATIENT:READ"), tenant)
	assertStatus(t, err, http.StatusForbidden)
}

func TestRequireRoleGranted(t *testing.T) {
	tenant := &Tenant{ID: "t1", Roles: []string{RoleNurse}}
	if err := runWithTenant(RequireRole(RoleDoctor, RoleNurse), tenant); err != nil {
		t.Errorf("matching role rejected: %v", err)
	}
}

func TestRequireRoleDenied(t *testing.T) {
	tenant := &Tenant{ID: "t1", Roles: []string{RoleReceptionist}}
	err := runWithTenant(RequireRole(RoleDoctor, RoleNurse), tenant)
	assertStatus(t, err, http.StatusForbidden)
}

func TestRequireAttributeAllows(t *testing.T) {
	mw := RequireAttribute(func(c echo.Context) (bool, error) { return true, nil })
	if err := runWithTenant(mw, &Tenant{ID: "t1"}); err != nil {
		t.Errorf("allowed request rejected: %v", err)
	}
}

func TestRequireAttributeDenies(t *testing.T) {
	mw := RequireAttribute(func(c echo.Context) (bool, error) { return false, nil })
	err := runWithTenant(mw, &Tenant{ID: "t1"})
	assertStatus(t, err, http.StatusForbidden)
}

func TestRequireAttributeErrorPropagates(t *testing.T) {
	storeErr := errors.New("store down")
	mw := RequireAttribute(func(c echo.Context) (bool, error) { return false, storeErr })
	err := runWithTenant(mw, &Tenant{ID: "t1"})
	if !errors.Is(err, storeErr) {
		t.Errorf("predicate error not propagated: %v", err)
	}
}
