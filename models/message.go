package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message in a gig conversation between the client and the assigned provider
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GigID     uint           `gorm:"not null;index" json:"gig_id"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Sender    User           `gorm:"foreignKey:SenderID" json:"sender"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
