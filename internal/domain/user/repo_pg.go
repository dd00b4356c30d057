package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, tenant_id, first_name, last_name, email, username,
	phone, department, password_hash, password_history, roles, status,
	last_login, login_attempts, reset_token, reset_token_expiry,
	activation_token, activation_token_expiry, refresh_tokens,
	created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, first_name, last_name, email, username,
			phone, department, password_hash, password_history, roles, status,
			activation_token, activation_token_expiry
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14
		)`,
		u.ID, u.TenantID, u.FirstName, u.LastName, u.Email, u.Username,
		u.Phone, u.Department, u.PasswordHash, u.PasswordHistory, u.Roles, u.Status,
		u.ActivationToken, u.ActivationTokenExpiry,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*User, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

// GetByEmail looks up across tenants: login takes an email only, and the
// tenant id is recovered from the matched record.
func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email))
}

func (r *repoPG) GetByActivationToken(ctx context.Context, tenantID, token string) (*User, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND activation_token = $2`, tenantID, token))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET
			first_name = $3, last_name = $4, email = $5, username = $6,
			phone = $7, department = $8, password_hash = $9, password_history = $10,
			roles = $11, status = $12, last_login = $13, login_attempts = $14,
			reset_token = $15, reset_token_expiry = $16,
			activation_token = $17, activation_token_expiry = $18,
			updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		u.TenantID, u.ID, u.FirstName, u.LastName, u.Email, u.Username,
		u.Phone, u.Department, u.PasswordHash, u.PasswordHistory,
		u.Roles, u.Status, u.LastLogin, u.LoginAttempts,
		u.ResetToken, u.ResetTokenExpiry,
		u.ActivationToken, u.ActivationTokenExpiry,
	)
	return err
}

func (r *repoPG) ListByStatus(ctx context.Context, tenantID, status string, limit, offset int) ([]*User, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND status = $2`, tenantID, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE tenant_id = $1 AND status = $2
		 ORDER BY created_at LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// AppendRefreshToken adds a session entry. No dedup and no cap: concurrent
// devices each hold their own refresh token.
func (r *repoPG) AppendRefreshToken(ctx context.Context, tenantID string, id uuid.UUID, token string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_tokens = array_append(refresh_tokens, $3), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken removes oldToken if present and appends newToken in a
// single statement. Rotation proceeds whether or not the removal matched.
func (r *repoPG) RotateRefreshToken(ctx context.Context, tenantID string, id uuid.UUID, oldToken, newToken string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_tokens = array_append(array_remove(refresh_tokens, $3), $4), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id, oldToken, newToken)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ClearRefreshTokens(ctx context.Context, tenantID string, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_tokens = '{}', updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *repoPG) scan(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.TenantID, &u.FirstName, &u.LastName, &u.Email, &u.Username,
		&u.Phone, &u.Department, &u.PasswordHash, &u.PasswordHistory, &u.Roles, &u.Status,
		&u.LastLogin, &u.LoginAttempts, &u.ResetToken, &u.ResetTokenExpiry,
		&u.ActivationToken, &u.ActivationTokenExpiry, &u.RefreshTokens,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repoPG) scanRow(rows pgx.Rows) (*User, error) {
	return r.scan(rows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
