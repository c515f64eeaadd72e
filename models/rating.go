package models

import "time"

// Rating is a client's feedback on a completed gig. The unique index on
// GigID is what guarantees at most one rating per gig.
type Rating struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GigID      uint      `gorm:"uniqueIndex;not null" json:"gig_id"`
	ClientID   uint      `gorm:"not null;index" json:"client_id"`
	ProviderID uint      `gorm:"not null;index" json:"provider_id"`
	Score      int       `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	Review     *string   `gorm:"type:text" json:"review"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the Rating model
func (Rating) TableName() string {
	return "ratings"
}
