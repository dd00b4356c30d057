package hospital

import (
	"context"
	"errors"
)

// Sentinel errors returned by repository implementations. Services translate
// these into the HTTP error taxonomy at their boundary.
var (
	ErrNotFound  = errors.New("hospital not found")
	ErrDuplicate = errors.New("hospital already registered")
)

// Repository defines the persistence interface for hospitals.
type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByTenantID(ctx context.Context, tenantID string) (*Hospital, error)
	GetByVerificationToken(ctx context.Context, token string) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
}
