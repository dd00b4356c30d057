package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const hospitalColumns = `id, tenant_id, name, address, city, state, zip_code,
	contact_number, admin_email, license_number, domain, status,
	verification_token, verification_token_expiry, verified_at, activated_at,
	created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	if h.Status == "" {
		h.Status = StatusPending
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO hospitals (
			id, tenant_id, name, address, city, state, zip_code,
			contact_number, admin_email, license_number, domain, status,
			verification_token, verification_token_expiry
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14
		)`,
		h.ID, h.TenantID, h.Name, h.Address, h.City, h.State, h.ZipCode,
		h.ContactNumber, h.AdminEmail, h.LicenseNumber, h.Domain, h.Status,
		h.VerificationToken, h.VerificationTokenExpiry,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByTenantID(ctx context.Context, tenantID string) (*Hospital, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE tenant_id = $1`, tenantID))
}

func (r *repoPG) GetByVerificationToken(ctx context.Context, token string) (*Hospital, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE verification_token = $1`, token))
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hospitals SET
			name = $2, address = $3, city = $4, state = $5, zip_code = $6,
			contact_number = $7, admin_email = $8, domain = $9, status = $10,
			verification_token = $11, verification_token_expiry = $12,
			verified_at = $13, activated_at = $14, updated_at = NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Address, h.City, h.State, h.ZipCode,
		h.ContactNumber, h.AdminEmail, h.Domain, h.Status,
		h.VerificationToken, h.VerificationTokenExpiry,
		h.VerifiedAt, h.ActivatedAt,
	)
	return err
}

func (r *repoPG) scan(row pgx.Row) (*Hospital, error) {
	h := &Hospital{}
	err := row.Scan(
		&h.ID, &h.TenantID, &h.Name, &h.Address, &h.City, &h.State, &h.ZipCode,
		&h.ContactNumber, &h.AdminEmail, &h.LicenseNumber, &h.Domain, &h.Status,
		&h.VerificationToken, &h.VerificationTokenExpiry, &h.VerifiedAt, &h.ActivatedAt,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
