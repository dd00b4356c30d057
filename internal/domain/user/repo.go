package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by repository implementations. Services translate
// these into the HTTP error taxonomy at their boundary.
var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// Repository is the credential store: per-tenant user records with hashed
// credentials, role lists, lifecycle status and the durable refresh-token
// session list.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByActivationToken(ctx context.Context, tenantID, token string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByStatus(ctx context.Context, tenantID, status string, limit, offset int) ([]*User, int, error)

	// Session-list operations. Each is a single atomic write against the
	// user's refresh_tokens column.
	AppendRefreshToken(ctx context.Context, tenantID string, id uuid.UUID, token string) error
	RotateRefreshToken(ctx context.Context, tenantID string, id uuid.UUID, oldToken, newToken string) error
	ClearRefreshTokens(ctx context.Context, tenantID string, id uuid.UUID) error
}
