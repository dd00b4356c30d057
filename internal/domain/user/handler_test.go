package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// newProtectedServer wires the user routes behind the same middleware chain
// the server uses for the protected group.
func newProtectedServer(t *testing.T) (*mockRepo, *auth.Codec, *echo.Echo) {
	t.Helper()
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	codec := auth.NewCodec([]byte("access"), []byte("refresh"), time.Hour, time.Hour)

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop(), false)
	protected := e.Group("/api/protected")
	protected.Use(auth.Context(codec))
	protected.Use(auth.ValidateTenantAccess(zerolog.Nop()))
	NewHandler(svc).RegisterRoutes(protected)
	return repo, codec, e
}

func adminToken(t *testing.T, codec *auth.Codec, tenantID string) string {
	t.Helper()
	roles := []string{auth.RoleHospitalAdmin}
	pair, err := codec.Issue("admin-1", tenantID, roles, auth.ResolvePermissions(roles))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pair.AccessToken
}

func doAuthed(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPendingEndpointRequiresToken(t *testing.T) {
	_, _, e := newProtectedServer(t)
	rec := doAuthed(e, http.MethodGet, "/api/protected/users/pending", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPendingEndpointRequiresPermission(t *testing.T) {
	_, codec, e := newProtectedServer(t)

	// PHARMACIST has no USER permissions.
	roles := []string{auth.RolePharmacist}
	pair, err := codec.Issue("u1", "t1", roles, auth.ResolvePermissions(roles))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := doAuthed(e, http.MethodGet, "/api/protected/users/pending", pair.AccessToken, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestPendingEndpointListsTenantUsers(t *testing.T) {
	repo, codec, e := newProtectedServer(t)
	seedPending(t, repo, "t1", "a@x.org")
	seedPending(t, repo, "t2", "b@y.org")

	rec := doAuthed(e, http.MethodGet, "/api/protected/users/pending", adminToken(t, codec, "t1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data  []*User `json:"data"`
		Total int     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 1 || len(body.Data) != 1 {
		t.Errorf("got %d users (total %d), want 1", len(body.Data), body.Total)
	}
}

func TestApproveEndpoint(t *testing.T) {
	repo, codec, e := newProtectedServer(t)
	u := seedPending(t, repo, "t1", "a@x.org")

	rec := doAuthed(e, http.MethodPost, "/api/protected/users/approve", adminToken(t, codec, "t1"),
		`{"userId":"`+u.ID.String()+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if repo.store[u.ID].Status != StatusActive {
		t.Error("user not activated")
	}
}

func TestApproveEndpointRejectsBadUUID(t *testing.T) {
	_, codec, e := newProtectedServer(t)
	rec := doAuthed(e, http.MethodPost, "/api/protected/users/approve", adminToken(t, codec, "t1"),
		`{"userId":"not-a-uuid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApproveEndpointBlocksCrossTenantBody(t *testing.T) {
	repo, codec, e := newProtectedServer(t)
	u := seedPending(t, repo, "t2", "a@x.org")

	// A t1 admin naming t2 in the body is stopped by tenant validation.
	rec := doAuthed(e, http.MethodPost, "/api/protected/users/approve", adminToken(t, codec, "t1"),
		`{"userId":"`+u.ID.String()+`","tenantId":"t2"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if repo.store[u.ID].Status != StatusInactive {
		t.Error("cross-tenant approve mutated the user")
	}
}
