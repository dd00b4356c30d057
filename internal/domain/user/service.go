package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// Service covers staff administration: listing accounts awaiting approval and
// activating them, optionally replacing their role assignment.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListPending returns the tenant's INACTIVE users, newest registrations last.
func (s *Service) ListPending(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error) {
	users, total, err := s.repo.ListByStatus(ctx, tenantID, StatusInactive, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list pending users", err)
	}
	return users, total, nil
}

// Approve activates a pending user. When roles is non-empty it replaces the
// user's role assignment; role names must come from the known role table.
func (s *Service) Approve(ctx context.Context, tenantID string, userID uuid.UUID, roles []string) (*User, error) {
	u, err := s.repo.GetByID(ctx, tenantID, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}

	if u.Status != StatusInactive {
		return nil, apperr.Validation("user is not pending approval")
	}

	if len(roles) > 0 {
		for _, role := range roles {
			if !auth.KnownRole(role) {
				return nil, apperr.Validation("unknown role: " + role)
			}
		}
		u.Roles = roles
	}

	u.Status = StatusActive
	u.ActivationToken = nil
	u.ActivationTokenExpiry = nil

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("failed to approve user", err)
	}

	s.logger.Info().
		Str("user_id", u.ID.String()).
		Str("tenant_id", u.TenantID).
		Strs("roles", u.Roles).
		Msg("user approved")

	return u, nil
}
