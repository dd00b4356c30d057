package user

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User lifecycle statuses.
const (
	StatusActive          = "ACTIVE"
	StatusInactive        = "INACTIVE"
	StatusLocked          = "LOCKED"
	StatusPasswordExpired = "PASSWORD_EXPIRED"
)

// passwordHistorySize is how many previous password hashes are retained for
// reuse checks.
const passwordHistorySize = 3

// User maps to the users table. Email is unique per tenant; username is
// unique globally. RefreshTokens is the durable session list: validity of a
// refresh token requires presence here on top of signature and expiry.
type User struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	TenantID              string     `db:"tenant_id" json:"tenantId"`
	FirstName             string     `db:"first_name" json:"firstName"`
	LastName              string     `db:"last_name" json:"lastName"`
	Email                 string     `db:"email" json:"email"`
	Username              string     `db:"username" json:"username"`
	Phone                 string     `db:"phone" json:"phone"`
	Department            string     `db:"department" json:"department"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	PasswordHistory       []string   `db:"password_history" json:"-"`
	Roles                 []string   `db:"roles" json:"roles"`
	Status                string     `db:"status" json:"status"`
	LastLogin             *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	LoginAttempts         int        `db:"login_attempts" json:"-"`
	ResetToken            *string    `db:"reset_token" json:"-"`
	ResetTokenExpiry      *time.Time `db:"reset_token_expiry" json:"-"`
	ActivationToken       *string    `db:"activation_token" json:"-"`
	ActivationTokenExpiry *time.Time `db:"activation_token_expiry" json:"-"`
	RefreshTokens         []string   `db:"refresh_tokens" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

// SetPassword hashes the plaintext password and pushes the hash onto the
// password history, keeping the most recent entries only.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.PasswordHistory = append(u.PasswordHistory, u.PasswordHash)
	if len(u.PasswordHistory) > passwordHistorySize {
		u.PasswordHistory = u.PasswordHistory[len(u.PasswordHistory)-passwordHistorySize:]
	}
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// WasPasswordUsedBefore reports whether the plaintext matches any hash in
// the password history.
func (u *User) WasPasswordUsedBefore(plaintext string) bool {
	for _, hash := range u.PasswordHistory {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil {
			return true
		}
	}
	return false
}

// GenerateUsername builds the canonical first.last@domain username:
// lowercased, stripped to alphanumerics, dots and the separator.
func GenerateUsername(firstName, lastName, hospitalDomain string) string {
	raw := strings.ToLower(firstName) + "." + strings.ToLower(lastName) + "@" + strings.ToLower(hospitalDomain)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '@' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePassword enforces the password policy: at least 8 characters with
// a lowercase letter, an uppercase letter, a digit and a special character.
func ValidatePassword(plaintext string) bool {
	if len(plaintext) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range plaintext {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return lower && upper && digit && special
}
