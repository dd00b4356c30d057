package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	store map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, tenantID string, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]
	if !ok || u.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByActivationToken(_ context.Context, tenantID, token string) (*User, error) {
	for _, u := range m.store {
		if u.TenantID == tenantID && u.ActivationToken != nil && *u.ActivationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.store[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *mockRepo) ListByStatus(_ context.Context, tenantID, status string, limit, offset int) ([]*User, int, error) {
	var all []*User
	for _, u := range m.store {
		if u.TenantID == tenantID && u.Status == status {
			cp := *u
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) AppendRefreshToken(_ context.Context, tenantID string, id uuid.UUID, token string) error {
	u, ok := m.store[id]
	if !ok || u.TenantID != tenantID {
		return ErrNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, token)
	return nil
}

func (m *mockRepo) RotateRefreshToken(_ context.Context, tenantID string, id uuid.UUID, oldToken, newToken string) error {
	u, ok := m.store[id]
	if !ok || u.TenantID != tenantID {
		return ErrNotFound
	}
	var kept []string
	for _, t := range u.RefreshTokens {
		if t != oldToken {
			kept = append(kept, t)
		}
	}
	u.RefreshTokens = append(kept, newToken)
	return nil
}

func (m *mockRepo) ClearRefreshTokens(_ context.Context, tenantID string, id uuid.UUID) error {
	u, ok := m.store[id]
	if !ok || u.TenantID != tenantID {
		return ErrNotFound
	}
	u.RefreshTokens = nil
	return nil
}

func seedPending(t *testing.T, repo *mockRepo, tenantID, email string) *User {
	t.Helper()
	u := &User{
		TenantID:  tenantID,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Username:  email,
		Roles:     []string{auth.RoleNurse},
		Status:    StatusInactive,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	appErr := apperr.From(err)
	if appErr == nil {
		t.Fatalf("expected status %d error, got %v", status, err)
	}
	if appErr.Status != status {
		t.Errorf("status = %d, want %d (%v)", appErr.Status, status, err)
	}
}

func TestListPendingScopedToTenant(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	seedPending(t, repo, "t1", "a@x.org")
	seedPending(t, repo, "t1", "b@x.org")
	seedPending(t, repo, "t2", "c@y.org")

	users, total, err := svc.ListPending(context.Background(), "t1", 20, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Errorf("got %d users (total %d), want 2", len(users), total)
	}
	for _, u := range users {
		if u.TenantID != "t1" {
			t.Errorf("cross-tenant user leaked: %+v", u)
		}
	}
}

func TestListPendingExcludesActiveUsers(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	u := seedPending(t, repo, "t1", "a@x.org")
	repo.store[u.ID].Status = StatusActive

	_, total, err := svc.ListPending(context.Background(), "t1", 20, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if total != 0 {
		t.Errorf("active user listed as pending")
	}
}

func TestApproveActivatesUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	u := seedPending(t, repo, "t1", "a@x.org")

	approved, err := svc.Approve(context.Background(), "t1", u.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != StatusActive {
		t.Errorf("status = %q, want ACTIVE", approved.Status)
	}
	if len(approved.Roles) != 1 || approved.Roles[0] != auth.RoleNurse {
		t.Errorf("roles changed without replacement: %v", approved.Roles)
	}
}

func TestApproveReplacesRoles(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	u := seedPending(t, repo, "t1", "a@x.org")

	approved, err := svc.Approve(context.Background(), "t1", u.ID, []string{auth.RoleDoctor})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(approved.Roles) != 1 || approved.Roles[0] != auth.RoleDoctor {
		t.Errorf("roles = %v, want [DOCTOR]", approved.Roles)
	}
}

func TestApproveRejectsUnknownRole(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	u := seedPending(t, repo, "t1", "a@x.org")

	_, err := svc.Approve(context.Background(), "t1", u.ID, []string{"JANITOR"})
	wantStatus(t, err, http.StatusBadRequest)

	if repo.store[u.ID].Status != StatusInactive {
		t.Error("rejected approval changed the user")
	}
}

func TestApproveUnknownUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Approve(context.Background(), "t1", uuid.New(), nil)
	wantStatus(t, err, http.StatusNotFound)
}

func TestApproveWrongTenant(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	u := seedPending(t, repo, "t1", "a@x.org")

	_, err := svc.Approve(context.Background(), "t2", u.ID, nil)
	wantStatus(t, err, http.StatusNotFound)
}

func TestApproveAlreadyActive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	u := seedPending(t, repo, "t1", "a@x.org")
	repo.store[u.ID].Status = StatusActive

	_, err := svc.Approve(context.Background(), "t1", u.ID, nil)
	wantStatus(t, err, http.StatusBadRequest)
}
