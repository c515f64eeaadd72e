package models

import (
	"time"

	"gorm.io/datatypes"
)

// GigEvent is one entry of a gig's append-only lifecycle history
type GigEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	GigID      uint           `gorm:"not null;index" json:"gig_id"`
	ActorID    uint           `gorm:"not null" json:"actor_id"`
	FromStatus *GigStatus     `gorm:"type:varchar(20)" json:"from_status"` // nil for creation
	ToStatus   GigStatus      `gorm:"type:varchar(20);not null" json:"to_status"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (GigEvent) TableName() string {
	return "gig_events"
}

// All lists every model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&ClientProfile{},
		&ProviderProfile{},
		&Category{},
		&Location{},
		&Gig{},
		&Rating{},
		&Message{},
		&GigEvent{},
	}
}
