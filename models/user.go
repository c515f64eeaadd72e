package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the fixed kind of an account. It is assigned at registration and never changes.
type Role string

const (
	RoleClient          Role = "client"
	RoleServiceProvider Role = "service_provider"
	RoleAdmin           Role = "admin"
	RoleSuperAdmin      Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleServiceProvider, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r carries administrative rights. admin and
// super_admin are interchangeable for every operation in this service.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// HasVerification reports whether accounts with this role have a verification record.
func (r Role) HasVerification() bool {
	return r == RoleClient || r == RoleServiceProvider
}

// User represents a registered account (client, service provider or administrator)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role           `gorm:"type:varchar(20);not null;default:'client';index" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
