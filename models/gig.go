package models

import (
	"time"
)

// GigStatus is a state of the gig lifecycle
type GigStatus string

const (
	GigOpen       GigStatus = "open"
	GigAllocated  GigStatus = "allocated"
	GigInProgress GigStatus = "in_progress"
	GigCompleted  GigStatus = "completed"
	GigCancelled  GigStatus = "cancelled"
)

func (s GigStatus) Valid() bool {
	switch s {
	case GigOpen, GigAllocated, GigInProgress, GigCompleted, GigCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s GigStatus) IsTerminal() bool {
	return s == GigCompleted || s == GigCancelled
}

// Gig represents one unit of work requested by a client
type Gig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	LocationID  uint      `gorm:"not null;index" json:"location_id"`
	Location    *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	ClientID    uint      `gorm:"not null;index" json:"client_id"`
	Client      *User     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProviderID  *uint     `gorm:"index" json:"provider_id"` // set on allocation, kept on cancellation
	Provider    *User     `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Budget      *float64  `json:"budget"`
	Status      GigStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ImageS3Key  *string   `json:"image_s3_key"`
	ImageURL    *string   `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Gig model
func (Gig) TableName() string {
	return "gigs"
}

// IsAssignedTo reports whether userID is the gig's provider.
func (g *Gig) IsAssignedTo(userID uint) bool {
	return g.ProviderID != nil && *g.ProviderID == userID
}
