package models

import (
	"time"

	"gorm.io/datatypes"
)

// VerificationStatus is the admin-controlled flag that gates gig creation and allocation.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// ClientProfile is the verification record of a client account
type ClientProfile struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	UserID      uint               `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CompanyName string             `json:"company_name"`
	Phone       string             `json:"phone"`
	Address     string             `gorm:"type:text" json:"address"`
	ReviewedBy  *uint              `json:"reviewed_by,omitempty"` // admin who last set the status
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TableName specifies the table name for the ClientProfile model
func (ClientProfile) TableName() string {
	return "client_profiles"
}

// ProviderProfile is the verification record of a service provider account.
// AvgRating is the rounded mean of every rating the provider has received.
type ProviderProfile struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	UserID      uint               `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Bio         string             `gorm:"type:text" json:"bio"`
	Phone       string             `json:"phone"`
	Skills      datatypes.JSON     `json:"skills"`
	AvgRating   int                `gorm:"not null;default:0" json:"avg_rating"`
	RatingCount int                `gorm:"not null;default:0" json:"rating_count"`
	ReviewedBy  *uint              `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TableName specifies the table name for the ProviderProfile model
func (ProviderProfile) TableName() string {
	return "provider_profiles"
}
