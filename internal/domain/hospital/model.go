package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Hospital lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusVerified  = "VERIFIED"
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusInactive  = "INACTIVE"
)

// Hospital maps to the hospitals table. The tenant id is the opaque partition
// key carried by every tenant-scoped record and token; it is generated once
// at registration and never changes.
type Hospital struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	TenantID                string     `db:"tenant_id" json:"tenantId"`
	Name                    string     `db:"name" json:"name"`
	Address                 string     `db:"address" json:"address"`
	City                    *string    `db:"city" json:"city,omitempty"`
	State                   *string    `db:"state" json:"state,omitempty"`
	ZipCode                 *string    `db:"zip_code" json:"zipCode,omitempty"`
	ContactNumber           string     `db:"contact_number" json:"contactNumber"`
	AdminEmail              string     `db:"admin_email" json:"adminEmail"`
	LicenseNumber           string     `db:"license_number" json:"licenseNumber"`
	Domain                  string     `db:"domain" json:"domain"`
	Status                  string     `db:"status" json:"status"`
	VerificationToken       *string    `db:"verification_token" json:"-"`
	VerificationTokenExpiry *time.Time `db:"verification_token_expiry" json:"-"`
	VerifiedAt              *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
	ActivatedAt             *time.Time `db:"activated_at" json:"activatedAt,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updatedAt"`
}
