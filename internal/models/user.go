package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles accepted by the backend. The frontend also knows a "superadmin"
// role for its own routing; it is not a server-side value and registration
// rejects it.
const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleAdmin    = "admin"
)

// Credential providers. A user created by phone/password is "local";
// federated users carry the provider that most recently established or
// linked the account.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFirebase = "firebase"
)

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleDriver || role == RoleAdmin
}

// User is the single account record for local and federated identities.
// Phone, Email, GoogleID and FirebaseUID are pointers so that absent values
// stay NULL and never collide under the unique indexes.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Phone        *string   `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	GoogleID     *string   `gorm:"size:128;uniqueIndex" json:"-"`
	FirebaseUID  *string   `gorm:"size:128;uniqueIndex" json:"-"`
	CompanyName  string    `gorm:"size:255" json:"company_name,omitempty"`
	Role         string    `gorm:"size:20;not null;default:'customer'" json:"role"`
	Provider     string    `gorm:"size:20;not null;default:'local'" json:"provider"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
