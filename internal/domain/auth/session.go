package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/platform/auth"
)

// SessionStore manages the durable refresh-token session list kept on each
// user record. A refresh token is only honored while it is present in that
// list: signature and expiry alone are not enough.
type SessionStore struct {
	users user.Repository
	codec *auth.Codec
}

func NewSessionStore(users user.Repository, codec *auth.Codec) *SessionStore {
	return &SessionStore{users: users, codec: codec}
}

// Store registers a freshly issued refresh token as a live session. Multiple
// concurrent sessions per user are allowed; each device holds its own entry.
func (s *SessionStore) Store(ctx context.Context, tenantID string, userID uuid.UUID, token string) error {
	return s.users.AppendRefreshToken(ctx, tenantID, userID, token)
}

// Rotate replaces oldToken with newToken in one write. The swap proceeds even
// if oldToken was already absent, so a retried rotation never strands the
// caller without a session.
func (s *SessionStore) Rotate(ctx context.Context, tenantID string, userID uuid.UUID, oldToken, newToken string) error {
	return s.users.RotateRefreshToken(ctx, tenantID, userID, oldToken, newToken)
}

// Verify checks a refresh token end to end: the signature and expiry via the
// codec, then membership in the subject's session list. Every failure mode
// collapses to auth.ErrInvalidToken so callers cannot distinguish a forged
// token from a revoked one.
func (s *SessionStore) Verify(ctx context.Context, token string) (*auth.RefreshClaims, *user.User, error) {
	claims, err := s.codec.VerifyRefresh(token)
	if err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.TenantID, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, nil, err
	}

	for _, t := range u.RefreshTokens {
		if t == token {
			return claims, u, nil
		}
	}
	return nil, nil, auth.ErrInvalidToken
}

// InvalidateAll revokes every live session for the user.
func (s *SessionStore) InvalidateAll(ctx context.Context, tenantID string, userID uuid.UUID) error {
	return s.users.ClearRefreshTokens(ctx, tenantID, userID)
}
