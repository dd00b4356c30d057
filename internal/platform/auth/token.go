package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every verification failure. Signature
// mismatch and expiry are deliberately not distinguished to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the claim set of a short-lived access token. It is fully
// self-contained: downstream middleware trusts roles and permissions without
// consulting the credential store.
type AccessClaims struct {
	jwt.RegisteredClaims
	TenantID    string   `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RefreshClaims is the claim set of a long-lived refresh token. It carries
// identity only; permissions are recomputed at refresh time and never trusted
// from this token.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
}

// TokenPair holds a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Codec signs and verifies the two token kinds with distinct secrets and
// distinct lifetimes. It is stateless and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL returns the configured refresh-token lifetime, used to size the
// refresh cookie max-age.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Issue signs an access/refresh pair for the given identity. The access token
// embeds roles and permissions; the refresh token embeds identity only. Each
// token carries a unique jti so that two pairs issued within the same second
// are still distinct strings.
func (c *Codec) Issue(userID, tenantID string, roles, permissions []string) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
		TenantID:    tenantID,
		Roles:       roles,
		Permissions: permissions,
	})
	accessToken, err := access.SignedString(c.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
		TenantID: tenantID,
	})
	refreshToken, err := refresh.SignedString(c.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks signature and expiry of an access token and returns its
// claims. Any failure yields ErrInvalidToken.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(token, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token and returns its
// claims. Any failure yields ErrInvalidToken.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(token, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
